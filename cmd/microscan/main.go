// Package main provides the microscan CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts globalOpts

	rootCmd := &cobra.Command{
		Use:   "microscan",
		Short: "Water contamination risk scoring",
		Long: `MicroScan scores harmful algal bloom risk from water quality telemetry and
microplastic contamination risk from optical measurements, optionally fused
with an AI vision assessment of a sample image.

This tool does not replace laboratory testing.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: search for .microscan/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or markdown")

	rootCmd.AddCommand(
		newAlgaeCmd(&opts),
		newOpticalCmd(&opts),
		newBatchCmd(&opts),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the microscan version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "microscan %s\n", version)
		},
	}
}
