package application

import (
	"github.com/bnema/archivist/internal/domain"
	"github.com/bnema/archivist/internal/ports"
)

type SummaryFile struct {
	Path   string `json:"path" yaml:"path"`
	Size   int64  `json:"size" yaml:"size"`
	Digest string `json:"blake3" yaml:"blake3"`
}

// ArtifactSummary is what the CLI reports after a successful generate run.
type ArtifactSummary struct {
	PackageName      string        `json:"package" yaml:"package"`
	SourceModule     string        `json:"source_module" yaml:"source_module"`
	StorePackageName string        `json:"store_package" yaml:"store_package"`
	InjectedResource string        `json:"injected_resource" yaml:"injected_resource"`
	KeptEntries      int           `json:"kept_entries" yaml:"kept_entries"`
	TotalEntries     int           `json:"total_entries" yaml:"total_entries"`
	OutputDir        string        `json:"output_dir" yaml:"output_dir"`
	Files            []SummaryFile `json:"files" yaml:"files"`
}

type ReachableResource struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Configs int    `json:"configs" yaml:"configs"`
}

// Summarize reports kept entries without the injected store resource so the
// count matches what reachability kept.
func Summarize(bundle domain.Bundle, artifact domain.ArchivedArtifact, written ports.WrittenArtifact) ArtifactSummary {
	total := 0
	if base, err := bundle.BaseModule(); err == nil && base.ResourceTable != nil {
		total = base.ResourceTable.EntryCount()
	}

	kept := artifact.ResourceTable.EntryCount()
	if _, ok := artifact.ResourceTable.Lookup(artifact.InjectedResource); ok {
		kept--
	}

	summary := ArtifactSummary{
		PackageName:      artifact.PackageName,
		SourceModule:     artifact.SourceModule,
		StorePackageName: artifact.StorePackageName,
		InjectedResource: artifact.InjectedResource.String(),
		KeptEntries:      kept,
		TotalEntries:     total,
		OutputDir:        written.Dir,
		Files:            make([]SummaryFile, 0, len(written.Files)),
	}
	for _, file := range written.Files {
		summary.Files = append(summary.Files, SummaryFile{Path: file.Path, Size: file.Size, Digest: file.Digest})
	}
	return summary
}

func ReachableRows(entries []domain.TableEntry) []ReachableResource {
	rows := make([]ReachableResource, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, ReachableResource{
			ID:      entry.ID.String(),
			Name:    entry.QualifiedName(),
			Configs: len(entry.Entry.Values),
		})
	}
	return rows
}
