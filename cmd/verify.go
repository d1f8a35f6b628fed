package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/archivist/internal/adapters/artifact"
	"github.com/bnema/archivist/internal/application"
	"github.com/bnema/archivist/internal/domain"
)

type verifyReport struct {
	Dir              string                    `json:"dir" yaml:"dir"`
	PackageName      string                    `json:"package" yaml:"package"`
	SourceModule     string                    `json:"source_module" yaml:"source_module"`
	StorePackageName string                    `json:"store_package" yaml:"store_package"`
	InjectedResource string                    `json:"injected_resource" yaml:"injected_resource"`
	Files            []application.SummaryFile `json:"files" yaml:"files"`
}

func newVerifyCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <dir>",
		Short: "Check an archived APK directory against its descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptor, err := artifact.Verify(args[0])
			if err != nil {
				return err
			}

			report := verifyReport{
				Dir:              args[0],
				PackageName:      descriptor.PackageName,
				SourceModule:     descriptor.SourceModule,
				StorePackageName: descriptor.StorePackageName,
				InjectedResource: domain.ResourceID(descriptor.InjectedResource).String(),
				Files:            make([]application.SummaryFile, 0, len(descriptor.Files)),
			}
			for _, file := range descriptor.Files {
				report.Files = append(report.Files, application.SummaryFile{Path: file.Path, Size: file.Size, Digest: file.Hex()})
			}

			return writeOutput(cmd, app.config.OutputFormat, report, func() (string, error) {
				return fmt.Sprintf("verified %d files for %s in %s", len(report.Files), report.PackageName, report.Dir), nil
			})
		},
	}
}
