package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/linkcheck"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Dir            string `arg:"" optional:"" help:"Site directory to check (default: output.directory from the configuration)" type:"path"`
	FailOnUnstyled bool   `name:"fail-on-unstyled" help:"Treat pages without a stylesheet as errors"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	dir := c.Dir
	if dir == "" {
		cfg, err := root.loadConfig(g)
		if err != nil {
			return err
		}
		dir = cfg.OutputDir()
	}

	res, err := linkcheck.CheckTree(context.Background(), dir)
	if err != nil {
		return err
	}
	printLinkResult(g.stdout(), res)
	if err := res.Err(); err != nil {
		return err
	}
	if c.FailOnUnstyled && len(res.Unstyled) > 0 {
		return unstyledError(res.Unstyled)
	}
	return nil
}

func printLinkResult(w io.Writer, res *linkcheck.Result) {
	_, _ = fmt.Fprintf(w, "Checked %d link(s) in %d page(s)\n", res.Links, res.Pages)
	for _, b := range res.Broken {
		_, _ = fmt.Fprintf(w, "  broken: %s\n", b)
	}
	for _, p := range res.Unstyled {
		_, _ = fmt.Fprintf(w, "  unstyled: %s\n", p)
	}
	if res.OK() {
		_, _ = fmt.Fprintln(w, "All links OK")
	}
}

func unstyledError(pages []string) error {
	return errors.ValidationError("pages without a stylesheet found").
		WithContext("pages", strings.Join(pages, ", ")).
		Build()
}
