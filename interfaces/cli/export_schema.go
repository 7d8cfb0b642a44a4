package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	infraconfig "github.com/felixgeelhaar/steam-mcp/infrastructure/config"
)

// exportSchemaOptions holds options for the export-schema command.
type exportSchemaOptions struct {
	outputPath string
}

// newExportSchemaCmd creates the export-schema command.
func (a *App) newExportSchemaCmd() *cobra.Command {
	opts := &exportSchemaOptions{}

	cmd := &cobra.Command{
		Use:   "export-schema",
		Short: "Export the configuration JSON schema",
		Long: `Export the JSON Schema for steam-mcp configuration files.

The exported schema can be used for:
  - IDE validation and autocompletion
  - CI/CD configuration validation

Examples:
  # Export schema to stdout
  steam-mcp export-schema

  # Export schema to a file
  steam-mcp export-schema -o schema.json

  # Use with VS Code
  # Add to .vscode/settings.json:
  # "yaml.schemas": {
  #   "./schema.json": ["steam-mcp*.yaml"]
  # }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.exportSchema(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: stdout)")

	return cmd
}

// exportSchema exports the configuration JSON schema.
func (a *App) exportSchema(opts *exportSchemaOptions) error {
	schemaJSON, err := infraconfig.GenerateSchema().MarshalIndent()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if opts.outputPath == "" {
		fmt.Fprintln(a.stdout, string(schemaJSON))
		return nil
	}

	if err := os.WriteFile(opts.outputPath, schemaJSON, 0600); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	fmt.Fprintf(a.stdout, "Schema exported to %s\n", opts.outputPath)
	return nil
}
