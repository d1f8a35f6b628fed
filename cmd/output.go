package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bnema/archivist/internal/application"
)

// writeOutput encodes value for the machine formats and falls back to render
// for text.
func writeOutput(cmd *cobra.Command, format application.OutputFormat, value any, render func() (string, error)) error {
	out := cmd.OutOrStdout()

	switch format {
	case application.OutputFormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case application.OutputFormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode yaml output: %w", err)
		}
		return enc.Close()
	default:
		rendered, err := render()
		if err != nil {
			return fmt.Errorf("render output: %w", err)
		}
		_, err = fmt.Fprintln(out, rendered)
		return err
	}
}
