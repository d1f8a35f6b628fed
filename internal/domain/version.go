package domain

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

type VersionGuardedFeature struct {
	Name         string
	EnabledSince string
}

var (
	ArchivedAPKGeneration = VersionGuardedFeature{
		Name:         "archived_apk_generation",
		EnabledSince: "1.13.2",
	}
	StoreArchiveEnabledByDefault = VersionGuardedFeature{
		Name:         "store_archive_enabled_by_default",
		EnabledSince: "1.14.0",
	}
)

// EnabledForVersion reports whether bundles built with the given bundletool
// version support the feature. Pre-release builds of the minimum version
// count as supporting it.
func (f VersionGuardedFeature) EnabledForVersion(version string) (bool, error) {
	since, err := semver.NewVersion(f.EnabledSince)
	if err != nil {
		return false, fmt.Errorf("feature %s: invalid minimum version %q: %w", f.Name, f.EnabledSince, err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid bundletool version %q: %w", version, err)
	}

	core, err := v.SetPrerelease("")
	if err != nil {
		return false, fmt.Errorf("invalid bundletool version %q: %w", version, err)
	}

	return !core.LessThan(since), nil
}
