package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing configuration and starter files"`
	Dir   string `short:"d" name:"dir" help:"Project directory to initialize (default: the configuration file's directory)" type:"path"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	cfgPath := root.Config
	if i.Dir != "" {
		cfgPath = filepath.Join(i.Dir, config.DefaultConfigFile)
	}
	return RunInit(g, cfgPath, i.Force)
}

// RunInit writes the example configuration and the starter files next to it.
func RunInit(g *Global, configPath string, force bool) error {
	out := g.stdout()
	_, _ = fmt.Fprintln(out, "Initializing pagebuilder project")
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}

	example := config.Example()
	layout := scaffold.Layout{
		TemplatesDir: example.Templates.Directory,
		ContentDir:   scaffold.DefaultLayout.ContentDir,
		StaticDir:    example.Static.Directory,
	}
	written, err := scaffold.Write(filepath.Dir(configPath), layout, force)
	if err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}
	for _, p := range written {
		_, _ = fmt.Fprintf(out, "  created %s\n", p)
	}
	_, _ = fmt.Fprintln(out, "initialized successfully")
	return nil
}
