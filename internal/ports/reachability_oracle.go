package ports

import "github.com/bnema/archivist/internal/domain"

// ReachabilityOracle returns the ids of every resource transitively reachable
// from manifest through the bundle's resource table.
type ReachabilityOracle interface {
	Reachable(bundle domain.Bundle, manifest domain.Manifest) (domain.ResourceIDSet, error)
}
