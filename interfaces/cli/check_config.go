package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/steam-mcp/domain/config"
)

// newCheckConfigCmd creates the check-config command.
func (a *App) newCheckConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate the server configuration",
		Long: `Load and validate the configuration the server would run with,
then print the effective settings. The API key is never printed.

Examples:
  # Check a config file (environment overrides apply on top)
  steam-mcp check-config --config steam-mcp.yaml

  # Check the environment-only configuration
  STEAM_API_KEY=... steam-mcp check-config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.checkConfig(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path (YAML or JSON)")

	return cmd
}

// checkConfig validates the effective configuration and prints it with
// the credential redacted.
func (a *App) checkConfig(path string) error {
	cfg, err := a.loadConfig(path)
	if err != nil {
		return err
	}

	if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
		fmt.Fprintln(a.stderr, "Configuration is invalid:")
		for _, e := range errs {
			fmt.Fprintf(a.stderr, "  - %s: %s\n", e.Path, e.Message)
		}
		return fmt.Errorf("configuration validation failed")
	}

	fmt.Fprintln(a.stdout, "Configuration is valid.")
	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "  API key: %s\n", redactKey(cfg.Steam.APIKey))
	if cfg.Steam.OwnerSteamID != "" {
		fmt.Fprintf(a.stdout, "  Owner: %s\n", cfg.Steam.OwnerSteamID)
	} else {
		fmt.Fprintln(a.stdout, "  Owner: not configured (owner aliases disabled)")
	}
	fmt.Fprintf(a.stdout, "  Rate limit: %.1f req/s, burst %d\n", cfg.Steam.RequestsPerSecond, cfg.Steam.EffectiveBurst())
	fmt.Fprintf(a.stdout, "  Max attempts: %d, timeout %s\n", cfg.Steam.MaxAttempts, cfg.Steam.Timeout.Duration())
	if cfg.Cache.Enabled {
		fmt.Fprintf(a.stdout, "  Cache: enabled, %d entries max\n", cfg.Cache.MaxEntries)
	} else {
		fmt.Fprintln(a.stdout, "  Cache: disabled")
	}
	fmt.Fprintf(a.stdout, "  Limits: %d concurrent, %s per invocation\n",
		cfg.Limits.MaxConcurrent, cfg.Limits.InvocationTimeout.Duration())
	fmt.Fprintf(a.stdout, "  Logging: %s (%s)\n", cfg.Server.LogLevel, cfg.Server.LogFormat)
	return nil
}

// redactKey shows only enough of the credential to identify it.
func redactKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
