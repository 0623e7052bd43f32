// Package scaffold writes a starter project: fragment templates, sample
// content and a stylesheet.
package scaffold

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
)

//go:embed assets/templates/*.html assets/content/*.md assets/static/css/*.css
var assets embed.FS

// Layout places the embedded assets inside the project directory.
type Layout struct {
	TemplatesDir string // receives assets/templates
	ContentDir   string // receives assets/content
	StaticDir    string // receives assets/static, copied into the output root at build time
}

// DefaultLayout matches config.Example.
var DefaultLayout = Layout{
	TemplatesDir: "templates",
	ContentDir:   "content",
	StaticDir:    "static",
}

// Write copies the starter files into root following l. Existing files are
// left alone unless force is set. It returns the paths written.
func Write(root string, l Layout, force bool) ([]string, error) {
	targets := map[string]string{
		"assets/templates": l.TemplatesDir,
		"assets/content":   l.ContentDir,
		"assets/static":    path.Join(l.StaticDir, "assets"),
	}

	var written []string
	for _, src := range []string{"assets/templates", "assets/content", "assets/static"} {
		dst := filepath.Join(root, filepath.FromSlash(targets[src]))
		err := fs.WalkDir(assets, src, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, _ := filepath.Rel(filepath.FromSlash(src), filepath.FromSlash(p))
			out := filepath.Join(dst, rel)
			ok, err := writeAsset(p, out, force)
			if ok {
				written = append(written, out)
			}
			return err
		})
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func writeAsset(src, dst string, force bool) (bool, error) {
	if _, err := os.Stat(dst); err == nil && !force {
		slog.Debug("Keeping existing file", logfields.Path(dst))
		return false, nil
	}
	data, err := assets.ReadFile(src)
	if err != nil {
		return false, errors.InternalError("read embedded asset").WithCause(err).WithContext("path", src).Build()
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return false, errors.FileSystemError("create directory").WithCause(err).WithContext("path", filepath.Dir(dst)).Build()
	}
	// #nosec G306 -- starter templates and public assets
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return false, errors.FileSystemError("write file").WithCause(err).WithContext("path", dst).Build()
	}
	return true, nil
}
