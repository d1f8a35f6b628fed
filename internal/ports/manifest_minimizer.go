package ports

import "github.com/bnema/archivist/internal/domain"

type ManifestMinimizer interface {
	Minimize(manifest domain.Manifest) (domain.Manifest, error)
}
