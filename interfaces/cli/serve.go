package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/steam-mcp/domain/config"
	"github.com/felixgeelhaar/steam-mcp/domain/pack"
	"github.com/felixgeelhaar/steam-mcp/domain/steamid"
	"github.com/felixgeelhaar/steam-mcp/domain/tool"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/logging"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/mcp"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/resilience"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/steamapi"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/storage/memory"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/telemetry"
	"github.com/felixgeelhaar/steam-mcp/pack/apps"
	"github.com/felixgeelhaar/steam-mcp/pack/news"
	"github.com/felixgeelhaar/steam-mcp/pack/player"
	"github.com/felixgeelhaar/steam-mcp/pack/stats"
)

const serverInstructions = `Query the Steam Web API through these tools. Steam identities are
accepted in any format: SteamID64, STEAM_X:Y:Z, [U:1:N], profile URLs,
vanity names, or "me" for the configured owner. Profile-scoped data
(friends, games, achievements) is only available for public profiles.`

// serveOptions holds options for the serve command.
type serveOptions struct {
	configPath string
	transport  string
	addr       string
}

// newServeCmd creates the serve command.
func (a *App) newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server over stdio or HTTP.

The stdio transport is what MCP clients such as editors and assistants
spawn directly. The HTTP transport serves the same tool set on a network
address for remote clients.

Configuration comes from a YAML or JSON file, with environment variables
overriding file values. Without a file, defaults plus environment
variables apply; STEAM_API_KEY is the only required setting.

Examples:
  # Serve over stdio with configuration from the environment
  STEAM_API_KEY=... steam-mcp serve

  # Serve over stdio with a config file
  steam-mcp serve --config steam-mcp.yaml

  # Serve over HTTP
  steam-mcp serve --transport http --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.transport, "transport", "t", "stdio", "Transport to serve on (stdio or http)")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "Listen address for the http transport")

	return cmd
}

// serve wires the full server and blocks until the context is cancelled.
func (a *App) serve(ctx context.Context, opts *serveOptions) error {
	if opts.transport != "stdio" && opts.transport != "http" {
		return fmt.Errorf("unknown transport %q (want stdio or http)", opts.transport)
	}

	cfg, err := a.loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
		return fmt.Errorf("invalid configuration: %w", errs)
	}

	logging.Init(logging.Config{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
		Output: os.Stderr,
	})

	var metrics telemetry.Metrics
	provider := telemetry.NewMetricsProvider(telemetry.DefaultMetricsConfig())
	if err := provider.Error(); err != nil {
		logging.Warn().Add(logging.ErrorField(err)).Msg("metrics disabled")
		metrics = &telemetry.NoopMetricsProvider{}
	} else {
		metrics = provider
	}

	registry, err := a.buildRegistry(ctx, cfg, metrics)
	if err != nil {
		return err
	}

	invoker := resilience.NewInvoker(resilience.InvokerConfig{
		MaxConcurrent:     cfg.Limits.MaxConcurrent,
		InvocationTimeout: cfg.Limits.InvocationTimeout.Duration(),
		Metrics:           metrics,
	})

	server, err := mcp.NewServer(mcp.ServerConfig{
		Name:         "steam-mcp",
		Version:      Version,
		Description:  "Steam Web API tools over the Model Context Protocol",
		Instructions: serverInstructions,
		Registry:     registry,
		Invoker:      invoker,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logging.Info().
		Add(logging.Str("transport", opts.transport)).
		Add(logging.Int("tools", len(registry.List()))).
		Msg("starting steam-mcp server")

	if opts.transport == "http" {
		return server.ServeHTTP(ctx, opts.addr)
	}
	return server.ServeStdio(ctx)
}

// buildRegistry constructs the Steam client, the identity normalizer, and
// every tool pack, and installs them into a fresh registry.
func (a *App) buildRegistry(ctx context.Context, cfg *config.Config, metrics telemetry.Metrics) (tool.Registry, error) {
	clientCfg := steamapi.Config{
		APIKey:            cfg.Steam.APIKey,
		RequestsPerSecond: cfg.Steam.RequestsPerSecond,
		Burst:             cfg.Steam.EffectiveBurst(),
		MaxAttempts:       cfg.Steam.MaxAttempts,
		Timeout:           cfg.Steam.Timeout.Duration(),
		Metrics:           metrics,
	}
	if cfg.Cache.Enabled {
		responseCache, err := memory.NewTTLCache(cfg.Cache.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}
		clientCfg.Cache = responseCache
	}

	client, err := steamapi.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create steam client: %w", err)
	}

	var normOpts []steamid.Option
	if cfg.Steam.OwnerSteamID != "" {
		// Vanity owner spellings need the resolver, so bootstrap with an
		// owner-less normalizer first.
		owner, err := steamid.NewNormalizer(client).Normalize(ctx, cfg.Steam.OwnerSteamID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve owner steam id: %w", err)
		}
		normOpts = append(normOpts, steamid.WithOwner(owner))
	}
	normalizer := steamid.NewNormalizer(client, normOpts...)

	registry := memory.NewToolRegistry()
	err = pack.InstallAll(registry,
		player.New(player.Options{Client: client, Normalizer: normalizer}),
		apps.New(apps.Options{Client: client}),
		news.New(news.Options{Client: client}),
		stats.New(stats.Options{Client: client, Normalizer: normalizer}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to install tool packs: %w", err)
	}
	return registry, nil
}
