package pagegen

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// PageFileMode is applied to every written page so static servers can read it.
const PageFileMode os.FileMode = 0o644

// ResolveOutputPath joins relativePath onto outputRoot. The path must be
// non-empty, relative, and stay inside outputRoot.
func ResolveOutputPath(outputRoot, relativePath string) (string, error) {
	if strings.TrimSpace(relativePath) == "" {
		return "", errors.ValidationError("output path is required").Build()
	}

	cleanRel := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(cleanRel) || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return "", errors.ValidationError("output path must stay inside the output directory").
			WithContext("path", relativePath).
			Build()
	}
	if cleanRel == "." {
		return "", errors.ValidationError("output path must name a file").
			WithContext("path", relativePath).
			Build()
	}

	return filepath.Join(outputRoot, cleanRel), nil
}

// WritePage creates fullPath's ancestors and atomically replaces the file with html.
func WritePage(fullPath, html string) error {
	return WriteFile(fullPath, strings.NewReader(html))
}

// WriteFile creates fullPath's ancestors and atomically replaces the file with
// the contents of r, readable by static servers.
func WriteFile(fullPath string, r io.Reader) error {
	// #nosec G301 -- output directories are served as public site content.
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return errors.FileSystemError("create output directory").
			WithCause(err).
			WithContext("path", filepath.Dir(fullPath)).
			Build()
	}
	if err := atomic.WriteFile(fullPath, r); err != nil {
		return errors.FileSystemError("write page").
			WithCause(err).
			WithContext("path", fullPath).
			Build()
	}
	// #nosec G302 -- generated pages are public site content.
	if err := os.Chmod(fullPath, PageFileMode); err != nil {
		return errors.FileSystemError("set page permissions").
			WithCause(err).
			WithContext("path", fullPath).
			Build()
	}
	return nil
}
