package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartcity/aqi/internal/bootstrap"
	"github.com/smartcity/aqi/internal/config"
	"github.com/smartcity/aqi/internal/domain"
)

func predictCmd(cfg func() *config.Config) *cobra.Command {
	var (
		values map[string]string
		city   string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the AQI for a set of pollutant readings",
		Example: `  aqictl predict --value PM2.5=10 --value PM10=20 --value NO=5 --value NO2=15 \
    --value NOx=20 --value NH3=2 --value CO=1 --value SO2=3 --value O3=30 \
    --value Benzene=0 --value Toluene=0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := bootstrap.NewPredictionService(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			defer cleanup()

			inputs := make(map[string]any, len(values))
			for k, v := range values {
				inputs[strings.TrimSpace(k)] = v
			}

			resp, err := svc.Predict(cmd.Context(), domain.PredictionRequest{City: city, Inputs: inputs})
			svc.WaitBackground()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderPrediction(resp))
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&values, "value", nil, "pollutant reading as NAME=VALUE (repeatable)")
	cmd.Flags().StringVar(&city, "city", "", "city name (city variant only)")
	return cmd
}

func featuresCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "List model inputs in training order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := domain.CatalogFor(cfg().Variant)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFeatures(catalog))
			return nil
		},
	}
}

func citiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List cities accepted by the city variant",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), renderCities(domain.DefaultCities()))
		},
	}
}

func bandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bands",
		Short: "List AQI categories",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), renderBands(domain.DefaultBands()))
		},
	}
}
