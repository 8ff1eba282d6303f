package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/quorum/adapter/api"
	"github.com/felixgeelhaar/quorum/internal/app"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the JSON API until interrupted. In local mode (no DATABASE_URL)
the SQLite schema is migrated on start.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.HTTPAddr
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}
	serverCfg.ReadTimeout = cfg.HTTPReadTimeout
	serverCfg.WriteTimeout = cfg.HTTPWriteTimeout
	serverCfg.AllowedOrigins = cfg.AllowedOrigins
	serverCfg.RateLimitRPS = cfg.RateLimitRPS
	serverCfg.RateLimitBurst = cfg.RateLimitBurst

	server := api.NewServer(serverCfg, apiHandlers(container), container.Tokens, container.Health, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func apiHandlers(c *app.Container) api.Handlers {
	return api.Handlers{
		RegisterUser:      c.RegisterUserHandler,
		LoginUser:         c.LoginUserHandler,
		CreateMeeting:     c.CreateMeetingHandler,
		UpdateMeeting:     c.UpdateMeetingHandler,
		DeleteMeeting:     c.DeleteMeetingHandler,
		CreateTimeSlot:    c.CreateTimeSlotHandler,
		UpdateTimeSlot:    c.UpdateTimeSlotHandler,
		DeleteTimeSlot:    c.DeleteTimeSlotHandler,
		CreateVote:        c.CreateVoteHandler,
		DeleteVote:        c.DeleteVoteHandler,
		GetMeeting:        c.GetMeetingHandler,
		ListMeetings:      c.ListMeetingsHandler,
		ListOwnedMeetings: c.ListOwnedMeetingsHandler,
	}
}
