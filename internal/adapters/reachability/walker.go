// Package reachability computes which resources of a bundle's base module a
// manifest can still reach.
package reachability

import (
	"log/slog"

	"github.com/bnema/archivist/internal/domain"
	"github.com/bnema/archivist/internal/ports"
)

var _ ports.ReachabilityOracle = (*Walker)(nil)

// Walker does a breadth-first walk of the base resource table starting at
// the manifest's resource references. Framework resources are never part of
// the result and are not followed.
type Walker struct {
	logger *slog.Logger
}

func NewWalker(logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Walker{logger: logger}
}

func (w *Walker) Reachable(bundle domain.Bundle, manifest domain.Manifest) (domain.ResourceIDSet, error) {
	reachable := domain.NewResourceIDSet()

	base, err := bundle.BaseModule()
	if err != nil {
		return nil, err
	}
	if base.ResourceTable == nil {
		return reachable, nil
	}
	table := *base.ResourceTable

	packageName := manifest.Package
	if packageName == "" {
		packageName = bundle.PackageName()
	}

	var queue []domain.ResourceID
	for _, ref := range manifest.ResourceReferences() {
		if ref.IsFramework() {
			continue
		}
		id, ok := resolve(table, packageName, ref)
		if !ok {
			w.logger.Debug("unresolved manifest reference", "reference", ref.String())
			continue
		}
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if id.PackageID() == domain.FrameworkPackageID || reachable.Contains(id) {
			continue
		}
		entry, ok := table.Lookup(id)
		if !ok {
			w.logger.Debug("reference outside resource table", "resource_id", id.String())
			continue
		}
		reachable.Add(id)

		for _, value := range entry.Entry.Values {
			queue = append(queue, value.Value.References()...)
		}
	}

	return reachable, nil
}

func resolve(table domain.ResourceTable, packageName string, ref domain.Reference) (domain.ResourceID, bool) {
	if ref.ID != 0 {
		return ref.ID, true
	}
	if ref.Package != "" {
		packageName = ref.Package
	}
	entry, ok := table.FindByName(packageName, ref.Type, ref.Name)
	if !ok {
		return 0, false
	}
	return entry.ID, true
}
