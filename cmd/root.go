package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gignote/gignote-go/cmd/populate"
	"github.com/gignote/gignote-go/cmd/serve"
	"github.com/gignote/gignote-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gignote",
		Short: "GigNote-Go live music show tracker",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		serve.Command(settings),
		populate.Command(settings),
	)

	return rootCmd
}

// setupFlags configures the global flags for the root command.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}
