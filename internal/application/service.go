package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bnema/archivist/internal/domain"
	"github.com/bnema/archivist/internal/ports"
)

var ErrNilDependency = errors.New("archive service dependency is nil")

type Stubber interface {
	Provision() (string, error)
}

type Service struct {
	minimizer ports.ManifestMinimizer
	oracle    ports.ReachabilityOracle
	stubs     Stubber
	logger    *slog.Logger
	progress  ProgressFunc
}

func NewService(minimizer ports.ManifestMinimizer, oracle ports.ReachabilityOracle, stubs Stubber, logger *slog.Logger) (*Service, error) {
	if minimizer == nil || oracle == nil || stubs == nil {
		return nil, ErrNilDependency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		minimizer: minimizer,
		oracle:    oracle,
		stubs:     stubs,
		logger:    logger,
	}, nil
}

// WithProgress returns a copy of the service that reports each stage it
// starts to fn.
func (s *Service) WithProgress(fn ProgressFunc) *Service {
	out := *s
	out.progress = fn
	return &out
}

func (s *Service) report(stage Stage) {
	if s.progress != nil {
		s.progress(stage)
	}
}

func (s *Service) CheckEligibility(bundle domain.Bundle) error {
	return ValidateEligibility(bundle)
}

// GenerateArchivedArtifact runs the archive pipeline: eligibility gate,
// manifest minimization, reachability, table reduction, store resource
// injection and stub provisioning. The first failing stage aborts the run.
//
// A nil or empty storePackageOverride injects PlayStorePackageName; an empty
// string is never written as the store package.
func (s *Service) GenerateArchivedArtifact(ctx context.Context, bundle domain.Bundle, storePackageOverride *string) (domain.ArchivedArtifact, error) {
	s.report(StageGate)
	if err := ValidateEligibility(bundle); err != nil {
		return domain.ArchivedArtifact{}, err
	}

	base, err := bundle.BaseModule()
	if err != nil {
		return domain.ArchivedArtifact{}, err
	}
	packageName := bundle.PackageName()
	logger := s.logger.With("package", packageName, "module", base.Name)

	if err := ctx.Err(); err != nil {
		return domain.ArchivedArtifact{}, err
	}
	s.report(StageMinimize)
	archivedManifest, err := s.minimizer.Minimize(base.Manifest)
	if err != nil {
		return domain.ArchivedArtifact{}, fmt.Errorf("minimize manifest: %w", err)
	}
	logger.Debug("manifest minimized", "stage", "minimize")

	if err := ctx.Err(); err != nil {
		return domain.ArchivedArtifact{}, err
	}
	s.report(StageReduce)
	table, err := s.archivedResourceTable(bundle, base, archivedManifest, logger)
	if err != nil {
		return domain.ArchivedArtifact{}, err
	}

	s.report(StageInject)
	storePackage := stringDefault(storePackageOverride, domain.PlayStorePackageName)
	table, injectedID, err := table.InjectString(packageName, domain.ReactivationStoreResourceName, storePackage)
	if err != nil {
		return domain.ArchivedArtifact{}, fmt.Errorf("inject %s: %w", domain.ReactivationStoreResourceName, err)
	}
	logger.Debug("store resource injected", "stage", "inject", "resource_id", injectedID.String(), "store", storePackage)

	if err := ctx.Err(); err != nil {
		return domain.ArchivedArtifact{}, err
	}
	s.report(StageStub)
	stubPath, err := s.stubs.Provision()
	if err != nil {
		return domain.ArchivedArtifact{}, fmt.Errorf("provision code stub: %w", err)
	}
	logger.Debug("code stub provisioned", "stage", "stub", "path", stubPath)

	return domain.ArchivedArtifact{
		SourceModule:     base.Name,
		PackageName:      packageName,
		StorePackageName: storePackage,
		Manifest:         archivedManifest,
		ResourceTable:    table,
		InjectedResource: injectedID,
		CodeStubPath:     stubPath,
	}, nil
}

func (s *Service) archivedResourceTable(bundle domain.Bundle, base domain.Module, archivedManifest domain.Manifest, logger *slog.Logger) (domain.ResourceTable, error) {
	if base.ResourceTable == nil {
		logger.Debug("base module has no resource table", "stage", "reduce")
		return domain.ResourceTable{}, nil
	}

	reachable, err := s.oracle.Reachable(bundle, archivedManifest)
	if err != nil {
		return domain.ResourceTable{}, fmt.Errorf("compute reachable resources: %w", err)
	}

	reduced := base.ResourceTable.Reduce(reachable)
	logger.Debug("resource table reduced",
		"stage", "reduce",
		"reachable", reachable.Len(),
		"kept", reduced.EntryCount(),
		"total", base.ResourceTable.EntryCount(),
	)
	return reduced, nil
}

// ReachableResources lists the base-module resources the archived manifest
// still reaches, ordered by id.
func (s *Service) ReachableResources(ctx context.Context, bundle domain.Bundle) ([]domain.TableEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := bundle.BaseModule()
	if err != nil {
		return nil, err
	}
	if base.ResourceTable == nil {
		return []domain.TableEntry{}, nil
	}

	archivedManifest, err := s.minimizer.Minimize(base.Manifest)
	if err != nil {
		return nil, fmt.Errorf("minimize manifest: %w", err)
	}

	reachable, err := s.oracle.Reachable(bundle, archivedManifest)
	if err != nil {
		return nil, fmt.Errorf("compute reachable resources: %w", err)
	}

	entries := base.ResourceTable.Reduce(reachable).Entries()
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}
