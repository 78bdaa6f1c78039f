package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/leadwizard/internal/cli"
	httpAdapter "github.com/aretw0/leadwizard/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat HTTP server",
	Long:  `Starts the wizard behind POST /chat, with health, info, OpenAPI and metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stack, err := cli.BuildStack(ctx, cfg, logger, cli.StackOptions{Debug: debug})
		if err != nil {
			return fmt.Errorf("error initializing leadwizard: %w", err)
		}
		defer stack.Close()

		opts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
		if stack.Registry != nil {
			opts = append(opts, httpAdapter.WithGatherer(stack.Registry))
		}

		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           httpAdapter.NewHandler(stack.Service, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting leadwizard server", "addr", srv.Addr, "flow", cfg.Flow.Path, "nodes", stack.Flow.Len())
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutdown signal received")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("leadwizard server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default 8000)")
	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}
