package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/finreport/internal/api"
	"github.com/dgallion1/finreport/internal/llm"
	"github.com/dgallion1/finreport/internal/pipeline"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the report generation HTTP service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&reportTemplate, "template", "", "prompt template file (markdown)")
	serveCmd.Flags().StringVar(&reportPhases, "phases", "", "phase table override (yaml)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	tmpl, err := loadTemplate(cfg)
	if err != nil {
		return err
	}
	phases, err := loadPhaseTable(cfg)
	if err != nil {
		return err
	}

	stats := llm.NewStats(0)
	client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL, stats)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := pipeline.NewOrchestrator(cfg, client, tmpl, phases, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, client, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting finreport", "port", cfg.Port, "model", cfg.Model)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
