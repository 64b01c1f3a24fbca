package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bountyvault/internal/bootstrap/logging"
	"bountyvault/internal/errs"
	"bountyvault/internal/infrastructure/scheduler"
	"bountyvault/internal/transport/httpapi"
	"bountyvault/internal/usecase/bounty"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, the event stream and the scheduled solvency audit",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = deps.App.Config.Server.Addr
		}
		ctx = logging.WithAttrs(ctx, slog.String("addr", addr))

		audit, err := scheduler.New("solvency-audit", deps.App.Config.Audit.Schedule, func(jobCtx context.Context) error {
			results, err := deps.Service.AuditSolvency(jobCtx)
			if err != nil {
				return err
			}
			return bounty.AuditError(results)
		})
		if err != nil {
			return errs.Wrap(err, "configure solvency audit")
		}
		if err := audit.Start(ctx); err != nil {
			return errs.Wrap(err, "start solvency audit")
		}
		defer audit.Stop()

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewRouter(ctx, deps.Service, deps.Hub.ServeWS),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening")
			serveErr <- srv.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			logging.Error(ctx, "http server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve http")
		case <-ctx.Done():
		}

		logging.Info(ctx, "shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr)")
}
