package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	v1 "contact-mail-backend/internal/delivery/http/v1"
	"contact-mail-backend/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP endpoint",
	Long: `Start the HTTP server exposing POST /send-mail, GET /health and the
Swagger UI. The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Log.Info("Starting contact mail backend", "port", cfg.Port, "smtp", cfg.Mail.SMTPEnabled)

		router := v1.NewRouter(v1.RouterDeps{
			ContactUC: a.contactUC,
			HealthUC:  a.healthUC,
			MailLog:   a.mailLog,
			Config:    cfg,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		// Graceful Shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			logger.Log.Error("Listen failed", "error", err)
			return err
		case <-quit:
		}
		logger.Log.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Log.Error("Server forced to shutdown", "error", err)
			return err
		}

		logger.Log.Info("Server exiting")
		return nil
	},
}
