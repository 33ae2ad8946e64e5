// Command engined runs the prediction-market engine as a standalone process:
// it loads configuration, wires structured logging and OpenTelemetry, boots
// one core/engine.Engine, advances its logical clock on a fixed tick, and
// serves Prometheus metrics for operators to scrape.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"predmarket/engine/config"
	"predmarket/engine/core/engine"
	"predmarket/engine/core/types"
	"predmarket/engine/observability/logging"
	telemetry "predmarket/engine/observability/otel"
)

func main() {
	var cfgPath string
	var tickInterval time.Duration
	flag.StringVar(&cfgPath, "config", "engine.toml", "path to engine configuration")
	flag.DurationVar(&tickInterval, "tick-interval", time.Second, "wall-clock interval between logical slot ticks")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("ENGINE_ENV"))
	slogger := logging.Setup("predmarket-engine", env)
	logger := log.New(os.Stdout, "engined ", log.LstdFlags|log.Lmsgprefix)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	var shutdownTelemetry func(context.Context) error
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = telemetry.Init(context.Background(), telemetry.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Telemetry.Environment,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
			Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
			Metrics:     cfg.Telemetry.Metrics,
			Traces:      cfg.Telemetry.Traces,
		})
		if err != nil {
			slogger.Error("failed to initialise telemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			if shutdownTelemetry != nil {
				_ = shutdownTelemetry(context.Background())
			}
		}()
	}

	eng, err := engine.NewEngineFromConfig(*cfg)
	if err != nil {
		logger.Fatalf("construct engine: %v", err)
	}
	if err := eng.State.RestorePauses(); err != nil {
		logger.Fatalf("restore pause state: %v", err)
	}
	slogger.Info("engine constructed", "admins", len(cfg.Admins), "listen", cfg.ListenAddress)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{Addr: cfg.ListenAddress, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Printf("listening on %s", cfg.ListenAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen and serve: %v", err)
		}
	}()

	runTicker(ctx, eng, tickInterval, slogger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}

// runTicker drives the engine's logical clock until ctx is cancelled. A real
// deployment would derive slots from an external consensus/sequencing
// source; absent one, a fixed wall-clock interval gives the engine a
// deterministic stand-in clock to advance against.
func runTicker(ctx context.Context, eng *engine.Engine, interval time.Duration, slogger interface {
	Error(msg string, args ...any)
}) {
	var slot types.Slot
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			slot = slot.Add(1)
			if err := eng.Tick(slot); err != nil {
				slogger.Error("tick failed", "slot", uint64(slot), "error", err)
			}
		}
	}
}
