package cmd

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

	"github.com/mohamedwael201193/octaneshift-api-sub000/config"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/flow"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/ingress"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/logging"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/session"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/sideshift"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/telegram"
)

var webhookURL string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook service",
	Long: `Run the Telegram webhook service: receives updates, drives the order
conversation, and talks to the swap provider.

Examples:
  octaneshift serve
  octaneshift serve --webhook-url https://bot.example.com/webhook/<secret>`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&webhookURL, "webhook-url", "", "Public webhook URL to register with Telegram on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.BotToken == "" {
		return fmt.Errorf("bot token not set. Set OCTANESHIFT_BOT_TOKEN or bot_token in the config file")
	}
	if cfg.WebhookSecret == "" {
		return fmt.Errorf("webhook secret not set. Set OCTANESHIFT_WEBHOOK_SECRET or webhook_secret in the config file")
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return err
	}

	client := sideshift.NewClient(cfg.BaseURL, cfg.APISecret, cfg.AffiliateID, cfg.CommissionRate)
	store := session.NewMemoryStore(cfg.SessionTTL)
	bot := telegram.NewAPI(cfg.BotToken)
	orch := flow.New(logger, store, client, bot)

	handler := ingress.NewHandler(logger, cfg.WebhookSecret, orch, bot)
	defer handler.Close()

	mux := http.NewServeMux()
	mux.Handle("/webhook/", handler)
	mux.Handle("/webhook", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if webhookURL != "" {
		if err := bot.SetWebhook(ctx, webhookURL, cfg.WebhookSecret); err != nil {
			return fmt.Errorf("registering webhook: %w", err)
		}
		logger.Info("webhook registered", "url", webhookURL)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
