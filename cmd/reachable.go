package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/archivist/internal/application"
)

func newReachableCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reachable <bundle>",
		Short: "List base-module resources the archived manifest still reaches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := app.loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			entries, err := app.service.ReachableResources(cmd.Context(), bundle)
			if err != nil {
				return err
			}

			rows := application.ReachableRows(entries)
			return writeOutput(cmd, app.config.OutputFormat, rows, func() (string, error) {
				return app.reachableRenderer(bundle.PackageName(), rows)
			})
		},
	}
}
