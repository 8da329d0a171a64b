package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalDisk stores files under a root directory.
type LocalDisk struct {
	root    string
	baseURL string
}

// NewLocalDisk returns a disk rooted at root. A relative root is resolved
// against the working directory.
func NewLocalDisk(root, baseURL string) *LocalDisk {
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	return &LocalDisk{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the directory files are written under.
func (d *LocalDisk) Root() string { return d.root }

// abs maps a slash path onto the root. Paths that would escape the root are
// rejected.
func (d *LocalDisk) abs(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", fmt.Errorf("storage/local: empty path")
	}
	return filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (d *LocalDisk) Put(p string, content []byte) error {
	full, err := d.abs(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}

	// write then rename so readers never see a half-written image
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", p, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storage/local: rename %s: %w", p, err)
	}
	return nil
}

func (d *LocalDisk) Get(p string) ([]byte, error) {
	full, err := d.abs(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("storage/local: get %s: %w", p, err)
	}
	return data, nil
}

func (d *LocalDisk) Exists(p string) bool {
	full, err := d.abs(p)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (d *LocalDisk) Size(p string) (int64, error) {
	full, err := d.abs(p)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, ErrNotExist
	}
	if err != nil {
		return 0, fmt.Errorf("storage/local: stat %s: %w", p, err)
	}
	return info.Size(), nil
}

func (d *LocalDisk) URL(p string) string {
	return d.baseURL + "/" + strings.TrimLeft(p, "/")
}

func (d *LocalDisk) Delete(p string) error {
	full, err := d.abs(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", p, err)
	}
	return nil
}
