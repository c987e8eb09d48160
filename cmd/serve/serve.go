// Package serve implements the web server command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gignote/gignote-go/internal/conf"
	"github.com/gignote/gignote-go/internal/datastore"
	"github.com/gignote/gignote-go/internal/httpcontroller"
	"github.com/gignote/gignote-go/internal/imagestore"
	"github.com/gignote/gignote-go/internal/ingest"
	"github.com/gignote/gignote-go/internal/observability"
	"github.com/gignote/gignote-go/internal/security"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long:  "Serve the JSON API for venues, artists, shows and notes until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}

	setupFlags(cmd, settings)
	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for HTTP server")
	cmd.Flags().StringVar(&settings.Media.Path, "mediapath", viper.GetString("media.path"), "Directory for uploaded images")

	_ = viper.BindPFlags(cmd.Flags())
}

func run(settings *conf.Settings) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database is enabled in the configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = ds.Close() }()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	images, err := imagestore.New(settings.Media.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize image store: %w", err)
	}

	ingestService, err := ingest.NewService(settings, ds, metrics.Ingest)
	if err != nil {
		return fmt.Errorf("failed to initialize ingest service: %w", err)
	}
	defer func() { _ = ingestService.Close() }()

	server := httpcontroller.New(settings, ds, security.NewManager(settings), images, ingestService, metrics)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
