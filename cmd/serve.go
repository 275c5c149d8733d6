package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	ghclient "github.com/augustcaio/portfolio-gateway/pkg/github"
	"github.com/augustcaio/portfolio-gateway/pkg/logging"
	"github.com/augustcaio/portfolio-gateway/pkg/mailer"
	"github.com/augustcaio/portfolio-gateway/pkg/metrics"
	"github.com/augustcaio/portfolio-gateway/pkg/server"
	"github.com/augustcaio/portfolio-gateway/pkg/version"
	"github.com/augustcaio/portfolio-gateway/pkg/warmer"
)

const (
	shutdownTimeout   = 15 * time.Second
	tokenCheckTimeout = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the /api routes",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	logger.Info("starting portfolio-gateway", "version", version.String(), "env", cfg.Env, "login", cfg.GitHub.Login)

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	if cfg.GitHub.Token == "" {
		logger.Warn("GITHUB_TOKEN is not set, requests use the anonymous rate limit")
	} else {
		checkToken(cmd.Context(), client, cfg.GitHub.Login, logger)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	reader, err := newReader(cfg, client, logger, m, true)
	if err != nil {
		return err
	}
	snapshots := reader.Cache()
	logger.Info("snapshot cache", "backend", cfg.Cache.Backend, "disabled", snapshots.Disabled(), "freshness", snapshots.Freshness())

	w, err := warmer.New(cfg.Cache.WarmSchedule, reader, cfg.Projects.DefaultLimit, logger)
	if err != nil {
		return err
	}

	mail := mailer.New(cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.To)
	if !mail.Enabled() {
		logger.Warn("contact mail disabled, set RESEND_API_KEY and CONTACT_EMAIL to enable it")
	}

	router := server.NewRouter(server.Deps{
		Reader:    reader,
		Refresher: reader,
		Mailer:    mail,
		Metrics:   m,
		Logger:    logger,
	})
	srv := server.NewHTTPServer(cfg.Server, router, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if w != nil {
		go w.Warm(ctx)
		w.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	w.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// checkToken reports a token GitHub rejects. The service keeps running
// and serves fallback data until the token is fixed.
func checkToken(ctx context.Context, client *ghclient.Client, login string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, tokenCheckTimeout)
	defer cancel()

	if err := client.ValidateToken(ctx, login); err != nil {
		logger.Warn("GitHub token check failed", "login", login, "err", err)
		return
	}
	logger.Debug("GitHub token accepted", "login", login)
}
