package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

func newOpticalCmd(opts *globalOpts) *cobra.Command {
	var (
		turbidity      float64
		edgeDensity    float64
		labVariance    float64
		assessmentPath string
		imagePath      string
	)

	cmd := &cobra.Command{
		Use:   "optical",
		Short: "Score microplastic contamination risk from optical metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}

			a, err := e.assessment(cmd.Context(), scoring.VariantMicroplastic, assessmentPath, imagePath)
			if err != nil {
				return err
			}

			result, err := e.opticalEngine().Score(scoring.Input{
				Signals:    signal.OpticalSignals(turbidity, edgeDensity, labVariance),
				Assessment: a,
			})
			if err != nil {
				return fmt.Errorf("scoring: %w", err)
			}
			return e.render(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().Float64Var(&turbidity, "turbidity", 0, "Optical turbidity score, 0-100 (required)")
	cmd.Flags().Float64Var(&edgeDensity, "edge", 0, "Edge density, 0-1 (required)")
	cmd.Flags().Float64Var(&labVariance, "lab", 0, "CIELAB variance (required)")
	cmd.Flags().StringVar(&assessmentPath, "assessment", "", "Path to a saved vision assessment JSON file")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a sample image to analyse")
	_ = cmd.MarkFlagRequired("turbidity")
	_ = cmd.MarkFlagRequired("edge")
	_ = cmd.MarkFlagRequired("lab")
	cmd.MarkFlagsMutuallyExclusive("assessment", "image")

	return cmd
}
