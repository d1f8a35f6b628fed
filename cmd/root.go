package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := newApp()

	rootCmd := &cobra.Command{
		Use:           "archivist",
		Short:         "Generate archived APKs from Android app bundles",
		Long:          "archivist turns an Android app bundle into an archived APK: a minimal package that keeps the app's identity and launcher entry, only the resources that manifest still reaches, and a placeholder code stub that sends users back to the store.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "config file (default $HOME/.config/archivist/config.toml)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "log pipeline stages to stderr")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("temp-dir", "", "directory for intermediate files")
	flags.String("format", "", "output format: text, json or yaml")

	rootCmd.AddCommand(
		newVersionCmd(),
		newGenerateCmd(app),
		newCheckCmd(app),
		newReachableCmd(app),
		newVerifyCmd(app),
	)

	return rootCmd
}
