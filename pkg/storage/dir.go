package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir writes rendered timetables under one output directory.
type Dir struct {
	base string
}

// NewDir creates base if needed.
func NewDir(base string) (*Dir, error) {
	if base == "" {
		base = "./exports"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Dir{base: base}, nil
}

// Save writes data to name and returns the full path. name must stay inside
// the directory.
func (d *Dir) Save(name string, data []byte) (string, error) {
	path, err := d.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func (d *Dir) resolve(name string) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid output name %q", name)
	}
	return filepath.Join(d.base, clean), nil
}
