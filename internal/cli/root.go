// Package cli implements ensctl, a command line client for the ENS REST API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/cache"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/config"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
)

type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds what every command needs
type CliContext struct {
	Config *config.Config
	Client *ens.Client
	Logger *logger.Logger

	closeCache func() error
}

// globalFlags override the config file and environment when set
type globalFlags struct {
	configPath   string
	baseURL      string
	apiKey       string
	cacheBackend string
	redisAddr    string
	logLevel     string
	logFormat    string
}

// openTokenCache is swapped out by tests
var openTokenCache = cache.FromConfig

// NewRootCommand creates the root cobra command. Cobra skips post-run hooks
// when a command fails, so the token cache opened for the command is closed by
// the returned release func instead; call it after Execute returns.
func NewRootCommand() (*cobra.Command, func() error) {
	var (
		flags globalFlags
		cctx  CliContext
	)

	rootCmd := &cobra.Command{
		Use:           "ensctl",
		Short:         "Command line client for the Engaging Networks REST API",
		Long:          `ensctl reads pages and supporters from the Engaging Networks (ENS) REST API and prints them as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			log, err := logger.NewWithWriter(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			log.Debug("ensctl started", "command", cmd.CommandPath())

			tokenCache, closeCache, err := openTokenCache(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			client, err := ens.New(cfg.BaseURL, cfg.APIKey,
				ens.WithTokenCache(tokenCache),
				ens.WithCacheKeyPrefix(cfg.CacheKeyPrefix),
				ens.WithLogger(log),
			)
			if err != nil {
				_ = closeCache()
				return fmt.Errorf("failed to create ENS client: %w", err)
			}

			cctx = CliContext{Config: cfg, Client: client, Logger: log, closeCache: closeCache}
			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &cctx))
			return nil
		},
	}

	release := func() error {
		closeCache := cctx.closeCache
		cctx.closeCache = nil
		if closeCache == nil {
			return nil
		}
		return closeCache()
	}

	rootCmd.AddCommand(newPagesCommand())
	rootCmd.AddCommand(newSupportersCommand())
	rootCmd.AddCommand(newSessionCommand())

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to a YAML configuration file (env: ENS_CONFIG)")
	pf.StringVar(&flags.baseURL, "base-url", "", "ENS REST API base URL (env: ENS_BASE_URL)")
	pf.StringVar(&flags.apiKey, "api-key", "", "ENS API user key (env: ENS_API_KEY)")
	pf.StringVar(&flags.cacheBackend, "cache-backend", "", "Session token cache: memory, redis, none (env: ENS_CACHE_BACKEND)")
	pf.StringVar(&flags.redisAddr, "redis-addr", "", "Redis address for the redis cache backend (env: ENS_REDIS_ADDR)")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log format (text, json)")

	return rootCmd, release
}

// Execute runs ensctl with the process arguments and releases the token cache
// however the command ends.
func Execute(ctx context.Context) error {
	rootCmd, release := NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := release(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close token cache: %w", closeErr)
	}
	return err
}

// loadConfig layers the persistent flags that were set over the config file
// and environment. Logging is configured by the flags alone.
func loadConfig(cmd *cobra.Command, flags globalFlags) (*config.Config, error) {
	cfg, err := config.FromFileAndEnv(flags.configPath)
	if err != nil {
		return nil, err
	}

	pf := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if pf.Changed(name) {
			*dst = value
		}
	}
	override("base-url", &cfg.BaseURL, flags.baseURL)
	override("api-key", &cfg.APIKey, flags.apiKey)
	override("redis-addr", &cfg.RedisAddr, flags.redisAddr)
	override("cache-backend", &cfg.CacheBackend, flags.cacheBackend)
	cfg.LogLevel = flags.logLevel
	cfg.LogFormat = flags.logFormat

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required (use --api-key flag or ENS_API_KEY env var)")
	}
	return cfg, nil
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}

// printJSON writes v to the command output as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
