package tempdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/bnema/archivist/internal/ports"
)

const dirMode = 0o700

// Dir allocates temp files inside a billy filesystem rooted at root.
type Dir struct {
	fs   billy.Filesystem
	root string
}

var _ ports.TempDirectory = (*Dir)(nil)

func New(fs billy.Filesystem, root string) *Dir {
	return &Dir{fs: fs, root: root}
}

// NewOS returns a Dir backed by the host filesystem under root, creating it
// if needed.
func NewOS(root string) (*Dir, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve temp dir: %w", err)
	}
	if err := os.MkdirAll(absRoot, dirMode); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	return New(osfs.New(absRoot), absRoot), nil
}

func NewMemory() *Dir {
	return New(memfs.New(), string(filepath.Separator))
}

func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) CreateTemp(prefix string) (ports.TempFile, error) {
	f, err := d.fs.TempFile(".", prefix)
	if err != nil {
		return nil, fmt.Errorf("create temp file in %s: %w", d.root, err)
	}

	return &file{File: f, path: filepath.Join(d.root, f.Name())}, nil
}

// ReadFile reads a file previously handed out by CreateTemp.
func (d *Dir) ReadFile(path string) ([]byte, error) {
	rel, err := d.rel(path)
	if err != nil {
		return nil, err
	}

	data, err := util.ReadFile(d.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Remove deletes a file previously handed out by CreateTemp. Removing a file
// that is already gone is not an error.
func (d *Dir) Remove(path string) error {
	rel, err := d.rel(path)
	if err != nil {
		return err
	}

	if err := d.fs.Remove(rel); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (d *Dir) rel(path string) (string, error) {
	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside temp dir %s", path, d.root)
	}
	return rel, nil
}

type file struct {
	billy.File
	path string
}

func (f *file) Name() string {
	return f.path
}
