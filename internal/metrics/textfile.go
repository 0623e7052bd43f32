package metrics

import (
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// WriteTextfile writes every metric gathered from g to path in the Prometheus
// text exposition format. The file is replaced atomically.
func WriteTextfile(g prom.Gatherer, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.FileSystemError("create metrics directory").WithCause(err).WithContext("path", dir).Build()
		}
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return errors.FileSystemError("write metrics textfile").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
