package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bxls/internal/lsp"
	"bxls/internal/version"
)

var (
	lspMaxRequests int64
	lspMetricsAddr string
)

func init() {
	lspCmd.Flags().Int64Var(&lspMaxRequests, "max-requests", lsp.DefaultMaxConcurrentRequests, "maximum number of requests handled concurrently")
	lspCmd.Flags().StringVar(&lspMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
}

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(globalSettingsPath, "")
	if err != nil {
		return err
	}
	if lspMetricsAddr != "" {
		_, stop, err := serveMetrics(lspMetricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Settings:              settings,
		Log:                   logger.Named("lsp"),
		MaxConcurrentRequests: lspMaxRequests,
		Version:               version.String(),
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}

// serveMetrics exposes the default Prometheus registry on addr until the
// returned function is called. It returns the bound address.
func serveMetrics(addr string) (net.Addr, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
