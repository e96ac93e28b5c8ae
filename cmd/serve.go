package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/rangosemfila/consumo/internal/report"
	"github.com/rangosemfila/consumo/internal/web"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the consumption report page over HTTP",
	Long:  "Serve /consumption?id=<id> as an HTML page, plus /healthz, /v1/status and /metrics.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	log := newLogger(zapcore.Lock(os.Stderr))
	defer func() { _ = log.Sync() }()

	gin.SetMode(gin.ReleaseMode)

	metrics := web.NewMetrics()
	observers := []report.Observer{metrics.Observe}

	journal := openJournal(cfg, log)
	if journal != nil {
		defer journal.Close()
		observers = append(observers, journalObservers(journal)...)
	}

	client := newClient(cfg, log, observers...)
	srv := web.New(web.Config{Addr: addr, BaseURL: client.BaseURL()}, client, metrics, log)

	fmt.Printf("  consumo page server listening on http://%s\n", addr)
	fmt.Printf("  Reports from %s\n", client.BaseURL())
	fmt.Printf("  Open http://%s/consumption?id=<id>\n", addr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
