package main

import (
	"os"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Capture and analyze the screen once, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initVisionClient(); err != nil {
			return err
		}

		imagePath, _ := cmd.Flags().GetString("image")
		intent, _ := cmd.Flags().GetString("ask")
		asJSON, _ := cmd.Flags().GetBool("json")

		report, err := runAnalysis(cmd.Context(), analyzeOptions{
			detailed:  intent == "",
			intent:    intent,
			imagePath: imagePath,
		}, nil)
		if err != nil {
			return err
		}

		if asJSON {
			return writeReportJSON(os.Stdout, report)
		}
		writeReport(os.Stdout, report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("image", "", "analyze an existing PNG instead of capturing")
	analyzeCmd.Flags().String("ask", "", "ask a question instead of running the detailed analysis")
	analyzeCmd.Flags().Bool("json", false, "print the raw report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
