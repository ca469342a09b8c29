package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/advisor"
	"github.com/Mayconxzdev/automation-advisor/internal/analytics"
	"github.com/Mayconxzdev/automation-advisor/internal/auth"
	"github.com/Mayconxzdev/automation-advisor/internal/server"
	"github.com/Mayconxzdev/automation-advisor/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "serve: init store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "serve: migrate")
		}

		var client anthropic.Client
		if cfg.Anthropic.Key != "" {
			client = anthropic.NewClient(cfg.Anthropic.Key)
		} else {
			zap.L().Warn("no anthropic key configured, recommendations use the rule pack only")
		}

		adv, err := advisor.New(cfg, client, st)
		if err != nil {
			return eris.Wrap(err, "serve: init advisor")
		}
		authSvc := auth.NewService(st, cfg.Auth.SessionTTL(), cfg.Auth.LoginRatePerMin, cfg.Auth.LoginBurst)
		an := analytics.NewService(st)

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           server.New(cfg, st, adv, authSvc, an).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("listening",
			zap.Int("port", port),
			zap.String("store_driver", cfg.Store.Driver),
			zap.Bool("external_generation", client != nil))

		if err := srv.ListenAndServe(); err != nil && !eris.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "serve: listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
