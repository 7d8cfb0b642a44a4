package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/steam-mcp/domain/pack"
	"github.com/felixgeelhaar/steam-mcp/domain/steamid"
	"github.com/felixgeelhaar/steam-mcp/domain/tool"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/steamapi"
	"github.com/felixgeelhaar/steam-mcp/pack/apps"
	"github.com/felixgeelhaar/steam-mcp/pack/news"
	"github.com/felixgeelhaar/steam-mcp/pack/player"
	"github.com/felixgeelhaar/steam-mcp/pack/stats"
)

// newToolsCmd creates the tools command.
func (a *App) newToolsCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server exposes",
		Long: `List every tool the server would expose, grouped by pack.

With --verbose, each tool's parameters are shown with their types,
defaults, and allowed values. With --json, the surface is emitted as a
JSON document including each tool's input schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listTools(configPath, verbose, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path (checked for loadability)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show tool parameters")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the tool surface as JSON")

	return cmd
}

// listTools prints the advertised tool surface. No credential is needed:
// tools are described, never executed. A config file, when named, is
// loaded so a broken one is reported here rather than at serve time.
func (a *App) listTools(configPath string, verbose, jsonOut bool) error {
	if configPath != "" {
		if _, err := a.loadConfig(configPath); err != nil {
			return err
		}
	}
	client, err := steamapi.New(steamapi.Config{APIKey: "list-only"})
	if err != nil {
		return fmt.Errorf("failed to create steam client: %w", err)
	}
	normalizer := steamid.NewNormalizer(client)

	packs := []*pack.Pack{
		player.New(player.Options{Client: client, Normalizer: normalizer}),
		apps.New(apps.Options{Client: client}),
		news.New(news.Options{Client: client}),
		stats.New(stats.Options{Client: client, Normalizer: normalizer}),
	}

	if jsonOut {
		return a.printToolsJSON(packs)
	}

	total := 0
	for _, p := range packs {
		fmt.Fprintf(a.stdout, "%s v%s — %s\n", p.Name, p.Version, p.Description)
		for _, t := range p.Tools {
			total++
			fmt.Fprintf(a.stdout, "  %s\n", t.Name())
			if desc := t.Description(); desc != "" {
				fmt.Fprintf(a.stdout, "      %s\n", strings.ReplaceAll(desc, "\n", "\n      "))
			}
			if verbose {
				if summary := tool.Describe(t).ParamSummary(); summary != "" {
					fmt.Fprintf(a.stdout, "      %s\n", strings.ReplaceAll(summary, "\n", "\n      "))
				}
			}
		}
		fmt.Fprintln(a.stdout)
	}
	fmt.Fprintf(a.stdout, "%d tools in %d packs\n", total, len(packs))
	return nil
}

// printToolsJSON emits the tool surface as a JSON document, one entry
// per pack with each tool's name, description, and input schema.
func (a *App) printToolsJSON(packs []*pack.Pack) error {
	type toolEntry struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		InputSchema map[string]any `json:"inputSchema"`
	}
	type packEntry struct {
		Name    string      `json:"name"`
		Version string      `json:"version"`
		Tools   []toolEntry `json:"tools"`
	}

	out := make([]packEntry, 0, len(packs))
	for _, p := range packs {
		entry := packEntry{Name: p.Name, Version: p.Version}
		for _, t := range p.Tools {
			desc := tool.Describe(t)
			entry.Tools = append(entry.Tools, toolEntry{
				Name:        desc.Name,
				Description: desc.Description,
				InputSchema: desc.InputSchema(),
			})
		}
		out = append(out, entry)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tool surface: %w", err)
	}
	fmt.Fprintln(a.stdout, string(encoded))
	return nil
}
