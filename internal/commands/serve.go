package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/awb-kalender/internal/app"
	"github.com/klabast/wb-services/awb-kalender/internal/config"
	"github.com/klabast/wb-services/awb-kalender/internal/logger"
	"github.com/klabast/wb-services/awb-kalender/internal/poller"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the schedule poller",
		Long: `Run the daemon. The schedule is polled on a cron schedule (fetches are
still throttled), entities are recomputed on every tick and served under /api.
POST /api/refresh forces a fetch and is protected by the auth file written
with 'awb-kalender hash-password'.`,
		Args: cobra.NoArgs,
		RunE: c.runServe,
	}

	cmd.Flags().String("listen", "", "HTTP listen address (default :8080)")
	cmd.Flags().String("poll-schedule", "", "cron expression for the poll loop (default */30 * * * *)")
	cmd.Flags().String("auth-file", "", "auth file for POST /api/refresh (default auth.secret next to the binary)")
	_ = c.v.BindPFlag(config.KeyListen, cmd.Flags().Lookup("listen"))
	_ = c.v.BindPFlag(config.KeyPollSchedule, cmd.Flags().Lookup("poll-schedule"))
	_ = c.v.BindPFlag(config.KeyAuthFile, cmd.Flags().Lookup("auth-file"))

	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.v)
	if err != nil {
		return err
	}

	log := logger.NewStandardLogger(nil)
	defer log.Close()

	auth, err := app.LoadAuthCredentials(cfg.AuthFile, log)
	if err != nil {
		return fmt.Errorf("failed to load auth credentials: %w", err)
	}

	registry := newRegistry(cfg, log)
	p, err := poller.New(cfg.PollSchedule, registry, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           app.NewRouter(app.NewHandler(registry, log), auth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := p.Run(ctx); err != nil {
			log.Error("Poller stopped: %v", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Starting AWB Abfallkalender for %s, %s on %s", cfg.City, cfg.Street, cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
