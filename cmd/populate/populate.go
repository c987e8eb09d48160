// Package populate implements the one-shot ingest command.
package populate

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gignote/gignote-go/internal/conf"
	"github.com/gignote/gignote-go/internal/datastore"
	"github.com/gignote/gignote-go/internal/ingest"
	"github.com/gignote/gignote-go/internal/observability"
)

// Command creates the populate command. It runs one ingest pass against
// the configured source and exits.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Scrape the source listing and seed the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}

	setupFlags(cmd, settings)
	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVar(&settings.Ingest.SourceURL, "source", viper.GetString("ingest.sourceurl"), "Listing page to scrape")
	cmd.Flags().IntVar(&settings.Ingest.Timeout, "timeout", viper.GetInt("ingest.timeout"), "Fetch timeout in seconds")

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

	service, err := ingest.NewService(settings, ds, metrics.Ingest)
	if err != nil {
		return fmt.Errorf("failed to initialize ingest service: %w", err)
	}
	defer func() { _ = service.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return service.Run(ctx)
}
