package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wgomg/precis/internal/api"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP summarization service",
	Long: `Run the HTTP service.

Endpoints:
  GET  /health
  POST /summarize
  POST /documents/{id}/summarize
  POST /ask`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := a.logger
	logger.Info(nil, "Starting precis %s", Version)
	logger.Info(nil, "Environment: %s", a.cfg.App.Env)
	logger.Info(nil, "Log level: %s", a.cfg.App.LogLevel)
	logger.Info(nil, "Vectorizer: %s", a.cfg.Summary.Vectorizer)

	var documents api.DocumentSource
	if a.paperless != nil {
		documents = a.paperless
	}
	var assistant api.Assistant
	if a.llm != nil {
		assistant = a.llm
	}

	handler := api.NewHandler(logger, a.summarizer, documents, assistant, a.cfg)

	server := &http.Server{
		Addr:         "0.0.0.0:" + a.cfg.Server.Port,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(nil, "Starting server on port %s", a.cfg.Server.Port)
		logger.Info(nil, "Endpoints:")
		logger.Info(nil, "  GET  /health")
		logger.Info(nil, "  POST /summarize")
		logger.Info(nil, "  POST /documents/{id}/summarize (paperless=%v)", documents != nil)
		logger.Info(nil, "  POST /ask (llm=%v)", assistant != nil)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(nil, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Server.ShutdownTimeoutMs)*time.Millisecond)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info(nil, "Server stopped")
	return nil
}
