package ports

import (
	"context"

	"github.com/bnema/archivist/internal/domain"
)

type BundleLoader interface {
	Load(ctx context.Context, path string) (domain.Bundle, error)
}
