package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bnema/archivist/internal/adapters/artifact"
	"github.com/bnema/archivist/internal/application"
	"github.com/bnema/archivist/internal/domain"
	"github.com/bnema/archivist/internal/ports"
)

func newGenerateCmd(app *app) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "generate <bundle>",
		Short: "Generate an archived APK from a bundle",
		Long:  "Generate reads a bundle directory or .aab archive, checks it is eligible for archiving and writes the archived APK contents with a digest descriptor to --output.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			bundle, err := app.loader.Load(ctx, args[0])
			if err != nil {
				return err
			}

			var (
				archived domain.ArchivedArtifact
				written  ports.WrittenArtifact
			)
			run := func(ctx context.Context, report application.ProgressFunc) error {
				var runErr error
				archived, runErr = app.service.WithProgress(report).GenerateArchivedArtifact(ctx, bundle, app.storePackageOverride())
				if runErr != nil {
					return runErr
				}
				defer app.removeStub(archived.CodeStubPath)

				report(application.StageWrite)
				written, runErr = artifact.NewWriter(outputDir, app.tempDir, app.logger).Write(ctx, archived)
				return runErr
			}

			if app.config.OutputFormat == application.OutputFormatText && !app.verbose {
				err = runPipelineProgress(ctx, cmd.ErrOrStderr(), run)
			} else {
				err = run(ctx, func(application.Stage) {})
			}
			if err != nil {
				return err
			}

			summary := application.Summarize(bundle, archived, written)
			return writeOutput(cmd, app.config.OutputFormat, summary, func() (string, error) {
				return app.summaryRenderer(summary)
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory to write the archived APK contents to")
	cmd.Flags().String("store-package", "", "package name of the store that re-installs the app (default "+domain.PlayStorePackageName+")")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// removeStub hands the provisioned code stub back to the temp directory once
// it has been copied into the artifact.
func (a *app) removeStub(path string) {
	if path == "" {
		return
	}
	if err := a.tempDir.Remove(path); err != nil {
		a.logger.Warn("remove code stub", "path", path, "error", err.Error())
	}
}
