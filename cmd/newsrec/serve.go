package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rushteam/newsrec/api"
	"github.com/rushteam/newsrec/logging"
)

var (
	serveAddr  string
	serveEager bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP recommendation service",
	Long: `Serve the recommendation API (/v1/recommend, /v1/explain, ...) plus
/healthz and /metrics. The corpus is loaded on first use unless --eager is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveEager, "eager", false, "load the corpus before accepting requests")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := appConfig
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger := logging.With("server")

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if serveEager {
		if err := rt.svc.Ready(); err != nil {
			return err
		}
	}

	srv := api.NewServer(cfg.Server.Addr, api.NewRouter(rt.svc, logging.Logger()), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("artifacts", cfg.Artifacts.Dir).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
