package ports

import (
	"context"

	"github.com/bnema/archivist/internal/domain"
)

type WrittenFile struct {
	Path   string
	Size   int64
	Digest string
}

type WrittenArtifact struct {
	Dir   string
	Files []WrittenFile
}

type ArtifactWriter interface {
	Write(ctx context.Context, artifact domain.ArchivedArtifact) (WrittenArtifact, error)
}
