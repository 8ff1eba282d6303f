package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/quorum/internal/app"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
)

const readyTimeout = 2 * time.Second

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Relay outbox events to the message broker",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

type statsSource interface {
	GetStats() outbox.Stats
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	publisher, err := container.NewEventPublisher()
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	processor := container.NewOutboxProcessor(publisher)
	if err := processor.Start(ctx); err != nil {
		return err
	}

	if cfg.WorkerHealthAddr != "" {
		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           workerHealthMux(processor, container.DBConn.Ping, publisher),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down worker")
	processor.Stop()

	stats := processor.GetStats()
	logger.Info("worker stopped",
		"published", stats.PublishedCount,
		"failed", stats.FailedCount,
		"dead", stats.DeadCount,
	)
	return nil
}

// workerHealthMux serves liveness (/healthz) and readiness (/readyz) for the relay.
func workerHealthMux(stats statsSource, ping func(context.Context) error, publisher eventbus.Publisher) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s := stats.GetStats()
		writeStatus(w, http.StatusOK, map[string]any{
			"status":            "ok",
			"running":           s.IsRunning,
			"published":         s.PublishedCount,
			"failed":            s.FailedCount,
			"dead":              s.DeadCount,
			"lag_seconds":       s.LagSeconds,
			"last_processed_at": s.LastProcessedAt,
			"last_error_at":     s.LastErrorAt,
			"last_error":        s.LastError,
		})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := ping(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		if breaker, ok := publisher.(*eventbus.BreakerPublisher); ok && breaker.State() == gobreaker.StateOpen {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  eventbus.ErrBrokerUnavailable.Error(),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	return mux
}

func writeStatus(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
