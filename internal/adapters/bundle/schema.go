package bundle

import (
	"fmt"

	"github.com/bnema/archivist/internal/domain"
)

const (
	ConfigFileName    = "BundleConfig.toml"
	ManifestPath      = "manifest/AndroidManifest.xml"
	ResourceTablePath = "resources.pb"

	currentSchemaVersion = 1
)

type configSchema struct {
	Version      int                 `toml:"version"`
	Bundletool   bundletoolSchema    `toml:"bundletool"`
	StoreArchive *storeArchiveSchema `toml:"store_archive,omitempty"`
}

type bundletoolSchema struct {
	Version string `toml:"version"`
}

type storeArchiveSchema struct {
	Enabled *bool `toml:"enabled,omitempty"`
}

func (s *configSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s configSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported bundle config schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func (s configSchema) storeArchive() *bool {
	if s.StoreArchive == nil || s.StoreArchive.Enabled == nil {
		return nil
	}
	enabled := *s.StoreArchive.Enabled
	return &enabled
}

func toConfigSchema(b domain.Bundle) configSchema {
	schema := configSchema{
		Version:    currentSchemaVersion,
		Bundletool: bundletoolSchema{Version: b.BundletoolVersion},
	}
	if b.StoreArchive != nil {
		enabled := *b.StoreArchive
		schema.StoreArchive = &storeArchiveSchema{Enabled: &enabled}
	}
	return schema
}
