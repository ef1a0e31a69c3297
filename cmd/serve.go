package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/denysvitali/nbalance/internal/metrics"
	"github.com/denysvitali/nbalance/internal/serve"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the balance query and tool-call HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, l, err := loadRuntime("info")
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	engine, p, err := startEngine(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Shutdown(cmd.Context()); err != nil {
			l.Error("Plugin shutdown failed", zap.Error(err))
		}
	}()

	srv := serve.NewServer(serve.Config{Host: serveHost, Port: servePort}, engine, p.Fetcher(), l)
	return srv.Start(ctx)
}
