package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <bundle>",
		Short: "Check whether a bundle is eligible for archiving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := app.loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.service.CheckEligibility(bundle); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "eligible: %s\n", bundle.PackageName())
			return err
		},
	}
}
