package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/site"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Page   string `arg:"" help:"Output path of the configured page to render (e.g. pages/about/leadership.html)"`
	Depth  int    `help:"Override the page depth (negative keeps the configured value)" default:"-1"`
	Active string `help:"Override the active navigation entry"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}

	builder := site.NewBuilder(cfg, site.WithLogger(g.Logger))
	page, ok := builder.Find(r.Page)
	if !ok {
		return errors.NewError(errors.CategoryNotFound, "page is not configured").
			WithContext("output_path", r.Page).
			Build()
	}
	if r.Depth >= 0 {
		depth := r.Depth
		page.Depth = &depth
	}
	if r.Active != "" {
		page.Active = r.Active
	}

	req, err := builder.Request(page)
	if err != nil {
		return err
	}
	gen, err := builder.Generator()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(g.stdout(), gen.Render(req))
	return err
}
