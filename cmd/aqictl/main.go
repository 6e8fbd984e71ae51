package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartcity/aqi/internal/config"
	"github.com/smartcity/aqi/internal/logging"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "aqictl",
		Short:         "🌬️  Air Quality Index prediction from pollutant readings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(v)
			if err != nil {
				return err
			}
			if err := logging.Setup(loaded.LogLevel, loaded.LogFormat); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("variant", "", "model variant (standard, city)")
	flags.String("model", "", "path to the model artifact")
	flags.String("ml-url", "", "external model server URL (overrides --model)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("model_variant", flags.Lookup("variant"))
	_ = v.BindPFlag("model_path", flags.Lookup("model"))
	_ = v.BindPFlag("ml_service_url", flags.Lookup("ml-url"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	cfgFn := func() *config.Config { return cfg }
	root.AddCommand(predictCmd(cfgFn))
	root.AddCommand(featuresCmd(cfgFn))
	root.AddCommand(citiesCmd())
	root.AddCommand(bandsCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
