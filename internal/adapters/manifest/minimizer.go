package manifest

import (
	"github.com/bnema/archivist/internal/domain"
	"github.com/bnema/archivist/internal/ports"
)

const (
	ReactivateActivityName = "com.google.android.archive.ReactivateActivity"
	ReactivateReceiverName = "com.google.android.archive.ReactivateReceiver"

	ActionClearCache = "com.google.android.archive.ACTION_CLEAR_CACHE"
	ActionWakeUp     = "com.google.android.archive.ACTION_WAKE_UP"

	translucentTheme = "@android:style/Theme.Translucent.NoTitleBar"
)

// keptApplicationAttributes are the application attributes the launcher and
// the backup system still read from an archived app.
var keptApplicationAttributes = []string{
	"android:icon",
	"android:roundIcon",
	"android:label",
	"android:banner",
	"android:theme",
	"android:allowBackup",
	"android:fullBackupContent",
	"android:fullBackupOnly",
	"android:dataExtractionRules",
	"android:backupAgent",
	"android:restoreAnyVersion",
	"android:hasFragileUserData",
	"android:isGame",
	"android:appCategory",
}

var _ ports.ManifestMinimizer = (*ArchivedMinimizer)(nil)

// ArchivedMinimizer strips a manifest down to identity, SDK levels and the
// application attributes above, then declares the reactivation components.
type ArchivedMinimizer struct{}

func NewArchivedMinimizer() *ArchivedMinimizer {
	return &ArchivedMinimizer{}
}

func (m *ArchivedMinimizer) Minimize(full domain.Manifest) (domain.Manifest, error) {
	archived := domain.Manifest{
		Package:          full.Package,
		VersionCode:      full.VersionCode,
		VersionName:      full.VersionName,
		MinSdkVersion:    full.MinSdkVersion,
		TargetSdkVersion: full.TargetSdkVersion,
	}

	for _, name := range keptApplicationAttributes {
		if value, ok := full.Application.Attribute(name); ok {
			archived.Application.Attributes = append(archived.Application.Attributes, domain.Attribute{Name: name, Value: value})
		}
	}

	archived.Application.Activities = []domain.Component{{
		Name: ReactivateActivityName,
		Attributes: []domain.Attribute{
			{Name: "android:exported", Value: "true"},
			{Name: "android:excludeFromRecents", Value: "true"},
			{Name: "android:noHistory", Value: "true"},
			{Name: "android:theme", Value: translucentTheme},
		},
		IntentFilters: []domain.IntentFilter{{
			Actions:    []string{domain.ActionMain},
			Categories: []string{domain.CategoryLauncher},
		}},
	}}
	archived.Application.Receivers = []domain.Component{{
		Name:       ReactivateReceiverName,
		Attributes: []domain.Attribute{{Name: "android:exported", Value: "false"}},
		IntentFilters: []domain.IntentFilter{{
			Actions: []string{ActionClearCache, ActionWakeUp},
		}},
	}}

	return archived, nil
}
