package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionGuardedFeatureEnabledForVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		feature VersionGuardedFeature
		version string
		want    bool
	}{
		{name: "exact minimum", feature: ArchivedAPKGeneration, version: "1.13.2", want: true},
		{name: "newer patch", feature: ArchivedAPKGeneration, version: "1.13.5", want: true},
		{name: "newer major", feature: ArchivedAPKGeneration, version: "2.0.0", want: true},
		{name: "older patch", feature: ArchivedAPKGeneration, version: "1.13.1", want: false},
		{name: "older minor", feature: ArchivedAPKGeneration, version: "1.8.0", want: false},
		{name: "prerelease of minimum", feature: ArchivedAPKGeneration, version: "1.13.2-alpha01", want: true},
		{name: "store archive default on", feature: StoreArchiveEnabledByDefault, version: "1.14.0", want: true},
		{name: "store archive default off", feature: StoreArchiveEnabledByDefault, version: "1.13.2", want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.feature.EnabledForVersion(tc.version)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestVersionGuardedFeatureRejectsInvalidVersion(t *testing.T) {
	t.Parallel()

	_, err := ArchivedAPKGeneration.EnabledForVersion("not-a-version")
	assert.ErrorContains(t, err, "invalid bundletool version")
}
