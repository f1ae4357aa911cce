package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/config"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

const landingPage = `<html>
<head><title>ENS Exporter</title></head>
<body>
<h1>ENS Exporter</h1>
<p><a href="/metrics">Metrics</a></p>
<p><a href="/health">Health</a></p>
</body>
</html>
`

// StartServer registers ensCollector on registry and serves it until ctx is
// cancelled or the listener fails.
func StartServer(
	ctx context.Context,
	cfg *config.Config,
	ensCollector prometheus.Collector,
	registry *prometheus.Registry,
	log *logger.Logger,
) error {
	if log == nil {
		log = logger.Discard()
	}

	if err := registry.Register(ensCollector); err != nil {
		return fmt.Errorf("failed to register ENS collector: %w", err)
	}

	scrapeTimeout := time.Duration(cfg.ScrapeTimeout) * time.Second
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      newHandler(registry, scrapeTimeout, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: scrapeTimeout + 5*time.Second,
		IdleTimeout:  65 * time.Second,
	}

	return serve(ctx, server, log)
}

// newHandler routes /metrics, /health and the landing page
func newHandler(registry *prometheus.Registry, scrapeTimeout time.Duration, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Timeout:           scrapeTimeout,
		ErrorLog:          log,
	}))
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/", handleLanding)
	return mux
}

// serve runs server and shuts it down gracefully once ctx is done
func serve(ctx context.Context, server *http.Server, log *logger.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server error: %w", err)

	case <-ctx.Done():
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		log.Info("HTTP server stopped")
		return nil
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(landingPage))
}

// SetupGracefulShutdown returns a context cancelled on SIGINT or SIGTERM
func SetupGracefulShutdown(log *logger.Logger) context.Context {
	if log == nil {
		log = logger.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("Received signal", "signal", sig.String())
		cancel()
	}()

	return ctx
}
