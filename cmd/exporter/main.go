package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/cache"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/collector"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/config"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/metrics"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	log.Info("ens-prometheus-exporter starting", "version", version, "config", cfg.String())

	// Create context with graceful shutdown support
	ctx := SetupGracefulShutdown(log)

	registry := newRegistry()

	ensCollector, closeCache, err := initializeCollector(ctx, cfg, registry, log)
	if err != nil {
		log.Error("Initialization failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Warn("Failed to close token cache", "error", err)
		}
	}()

	if err := StartServer(ctx, cfg, ensCollector, registry, log); err != nil {
		log.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// newRegistry creates the registry served on /metrics, with the Go runtime
// and process collectors included
func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// initializeCollector builds the ENS client and the collector that scrapes it.
// Exporter and API metrics are registered on registry; the returned function
// releases the token cache.
func initializeCollector(ctx context.Context, cfg *config.Config, registry *prometheus.Registry, log *logger.Logger) (*collector.ENSCollector, func() error, error) {
	pageTypes, err := cfg.ParsedPageTypes()
	if err != nil {
		return nil, nil, err
	}

	exporterMetrics, err := metrics.NewExporterMetricsWith(registry, version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register exporter metrics: %w", err)
	}

	apiMetrics, err := metrics.NewAPIMetrics(registry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register API metrics: %w", err)
	}

	tokenCache, closeCache, err := cache.FromConfig(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	scrapeTimeout := time.Duration(cfg.ScrapeTimeout) * time.Second
	httpClient := &http.Client{
		Transport: metrics.NewInstrumentedTransport(http.DefaultTransport, apiMetrics),
		Timeout:   scrapeTimeout,
	}

	client, err := ens.New(cfg.BaseURL, cfg.APIKey,
		ens.WithHTTPClient(httpClient),
		ens.WithTokenCache(tokenCache),
		ens.WithCacheKeyPrefix(cfg.CacheKeyPrefix),
		ens.WithLogger(log),
	)
	if err != nil {
		_ = closeCache()
		return nil, nil, fmt.Errorf("failed to create ENS client: %w", err)
	}

	api := collector.NewENSAPIWithCircuitBreaker(collector.NewENSClientAdapter(client), collector.CircuitBreakerConfig{
		MaxConsecutiveFailures: uint32(cfg.BreakerFailures),
		Timeout:                time.Duration(cfg.BreakerTimeout) * time.Second,
		Logger:                 log,
	})

	ensCollector := collector.NewENSCollector(
		api,
		metrics.NewMetricDescriptorsUnregistered(),
		scrapeTimeout,
		pageTypes,
		log,
	).WithExporterMetrics(exporterMetrics)

	return ensCollector, closeCache, nil
}
