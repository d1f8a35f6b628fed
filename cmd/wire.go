package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/archivist/internal/adapters/bundle"
	"github.com/bnema/archivist/internal/adapters/manifest"
	"github.com/bnema/archivist/internal/adapters/reachability"
	summaryadapter "github.com/bnema/archivist/internal/adapters/render/summary"
	"github.com/bnema/archivist/internal/adapters/tempdir"
	"github.com/bnema/archivist/internal/application"
	"github.com/bnema/archivist/internal/config"
	"github.com/bnema/archivist/internal/ports"
)

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	config.KeyLogLevel:     "log-level",
	config.KeyTempDir:      "temp-dir",
	config.KeyStorePackage: "store-package",
	config.KeyOutputFormat: "format",
}

type app struct {
	viper      *viper.Viper
	configPath string
	verbose    bool

	config            config.Config
	logger            *slog.Logger
	loader            ports.BundleLoader
	tempDir           *tempdir.Dir
	service           *application.Service
	summaryRenderer   func(application.ArtifactSummary) (string, error)
	reachableRenderer func(string, []application.ReachableResource) (string, error)
}

func newApp() *app {
	return &app{
		viper:             config.New(),
		summaryRenderer:   summaryadapter.Render,
		reachableRenderer: summaryadapter.RenderReachable,
	}
}

// wire loads configuration for the command about to run and builds the
// pipeline from it.
func (a *app) wire(cmd *cobra.Command) error {
	if err := config.BindFlags(a.viper, cmd.Flags(), flagKeys); err != nil {
		return fmt.Errorf("wire config flags: %w", err)
	}
	if err := config.ReadFile(a.viper, a.configPath); err != nil {
		return err
	}

	cfg, err := config.Load(a.viper)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.config = cfg

	level := cfg.LogLevel
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	dir, err := tempdir.NewOS(cfg.TempDir)
	if err != nil {
		return fmt.Errorf("wire temp directory: %w", err)
	}
	a.tempDir = dir

	service, err := application.NewService(
		manifest.NewArchivedMinimizer(),
		reachability.NewWalker(a.logger),
		application.NewStubProvisioner(dir),
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("wire archive service: %w", err)
	}
	a.service = service
	a.loader = bundle.NewLoader(a.logger)

	return nil
}

// storePackageOverride returns nil when no store package is configured so the
// service falls back to the default store.
func (a *app) storePackageOverride() *string {
	if a.config.StorePackage == "" {
		return nil
	}
	storePackage := a.config.StorePackage
	return &storePackage
}
