package application

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/bnema/archivist/internal/domain"
	"github.com/bnema/archivist/internal/ports"
)

const (
	ArchivedClassesDexPath = "dex/classes.dex"
	stubFilePrefix         = "classes-"
)

//go:embed dex/classes.dex
var archivedClassesDex []byte

// StubTemplate returns a copy of the embedded placeholder dex.
func StubTemplate() []byte {
	return append([]byte(nil), archivedClassesDex...)
}

type StubProvisioner struct {
	dir ports.TempDirectory
}

func NewStubProvisioner(dir ports.TempDirectory) *StubProvisioner {
	return &StubProvisioner{dir: dir}
}

// Provision copies the placeholder dex into a new temp file and returns its
// path. Each call yields a distinct file.
func (p *StubProvisioner) Provision() (string, error) {
	file, err := p.dir.CreateTemp(stubFilePrefix)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %w", domain.ErrStubIO, ArchivedClassesDexPath, err)
	}

	if _, err := file.Write(archivedClassesDex); err != nil {
		_ = file.Close()
		return "", p.discard(file.Name(), fmt.Errorf("%w: write %s: %w", domain.ErrStubIO, file.Name(), err))
	}

	if err := file.Close(); err != nil {
		return "", p.discard(file.Name(), fmt.Errorf("%w: close %s: %w", domain.ErrStubIO, file.Name(), err))
	}

	return file.Name(), nil
}

// discard removes a partially written stub and returns err with any removal
// failure joined to it.
func (p *StubProvisioner) discard(path string, err error) error {
	if removeErr := p.dir.Remove(path); removeErr != nil {
		return errors.Join(err, fmt.Errorf("remove partial stub: %w", removeErr))
	}
	return err
}
