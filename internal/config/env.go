package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

var envFileNames = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local from dir. Variables already present in
// the process environment are never overwritten, so earlier files win.
func loadEnvFiles(dir string) error {
	loaded := 0
	for _, name := range envFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		loaded++
	}
	if loaded == 0 {
		return errors.New("no .env file found")
	}
	return nil
}
