package application

import (
	"fmt"

	"github.com/bnema/archivist/internal/domain"
)

// ValidateEligibility decides whether an archived artifact may be generated
// for bundle. Checks run in a fixed order and the first failure is returned
// as a *domain.EligibilityError.
func ValidateEligibility(bundle domain.Bundle) error {
	feature := domain.ArchivedAPKGeneration
	supported, err := feature.EnabledForVersion(bundle.BundletoolVersion)
	if err != nil || !supported {
		return &domain.EligibilityError{
			Kind:       domain.ErrUnsupportedVersion,
			MinVersion: feature.EnabledSince,
			Message: fmt.Sprintf(
				"archived APK can only be generated for bundles built with version %s or higher (bundle version %q)",
				feature.EnabledSince, bundle.BundletoolVersion),
		}
	}

	enabledByDefault, err := domain.StoreArchiveEnabledByDefault.EnabledForVersion(bundle.BundletoolVersion)
	if err != nil {
		return fmt.Errorf("resolve store archive default: %w", err)
	}
	if !boolDefault(bundle.StoreArchive, enabledByDefault) {
		return &domain.EligibilityError{
			Kind:    domain.ErrArchiveDisabled,
			Message: "archived APK cannot be generated when store archive configuration is disabled",
		}
	}

	base, err := bundle.BaseModule()
	if err != nil {
		return &domain.EligibilityError{
			Kind:    domain.ErrBaseModuleNotFound,
			Message: "archived APK cannot be generated for a bundle without a base module",
		}
	}
	if base.Manifest.IsHeadless() {
		return &domain.EligibilityError{
			Kind:    domain.ErrHeadlessApp,
			Message: "archived APK cannot be generated for applications without a launcher activity",
		}
	}

	return nil
}

func boolDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func stringDefault(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}
