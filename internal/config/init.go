package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const gitignoreFile = ".gitignore"

// DataDirectory returns the directory holding logs and other session state.
func (c *Config) DataDirectory() string {
	if c.Options != nil && c.Options.DataDirectory != "" {
		return c.Options.DataDirectory
	}
	return defaultDataDirectory
}

// InitDataDirectory creates the data directory and ignores its contents in
// git. It is a no-op when the directory was already initialized.
func InitDataDirectory(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}
	dir := cfg.DataDirectory()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	ignorePath := filepath.Join(dir, gitignoreFile)
	_, err := os.Stat(ignorePath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", gitignoreFile, err)
	}
	if err := os.WriteFile(ignorePath, []byte("*\n"), 0o644); err != nil {
		return fmt.Errorf("failed to create %s: %w", gitignoreFile, err)
	}
	return nil
}
