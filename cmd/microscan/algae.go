package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

func newAlgaeCmd(opts *globalOpts) *cobra.Command {
	var (
		reportPath     string
		assessmentPath string
		imagePath      string
	)

	cmd := &cobra.Command{
		Use:   "algae",
		Short: "Score harmful algal bloom risk from a sensor report",
		Long: `Reads a water quality report (site_name plus labelled parameters such as
"Temperature, water": "23.4 deg C"), optionally fuses a saved vision
assessment or a freshly analysed image, and prints the risk, its drivers,
recommended actions and a 7-day outlook.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}

			var readings signal.Readings
			if reportPath != "" {
				rep, err := signal.LoadReport(reportPath)
				if err != nil {
					return err
				}
				readings = rep.Parameters
			}
			a, err := e.assessment(cmd.Context(), scoring.VariantAlgae, assessmentPath, imagePath)
			if err != nil {
				return err
			}
			if readings == nil && a == nil {
				return fmt.Errorf("nothing to score: pass --report, --assessment or --image")
			}

			result, err := e.algaeEngine().Score(scoring.Input{
				Signals:    signal.ExtractWaterQuality(readings),
				Assessment: a,
			})
			if err != nil {
				return fmt.Errorf("scoring: %w", err)
			}
			return e.render(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "Path to a sensor report JSON file")
	cmd.Flags().StringVar(&assessmentPath, "assessment", "", "Path to a saved vision assessment JSON file")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a water image to analyse")
	cmd.MarkFlagsMutuallyExclusive("assessment", "image")

	return cmd
}
