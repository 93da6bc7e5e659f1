package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "screenseer",
	Short: "Describe what is on screen with an AI vision model",
	Long: `screenseer captures your screen, optionally runs OCR over it, and asks an
AI vision model to describe what it sees.

Run it with no arguments for the interactive loop: press ENTER to capture
and analyze the current screen, type 'quit' to leave.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initVisionClient(); err != nil {
			return err
		}

		return runInteractive(cmd.Context(), os.Stdin, os.Stdout, os.Stderr, func(ctx context.Context, intent string) (*Report, error) {
			return runAnalysis(ctx, analyzeOptions{intent: intent}, nil)
		})
	},
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPathOverride, "config", "", "path to the config file")
	pf.String("model", "", "vision model to use")
	pf.String("base-url", "", "OpenAI-compatible API base URL")
	pf.String("mode", "", "capture mode: screen, window or region")
	pf.Int("display", 0, "display index to capture")
	pf.Bool("ocr", false, "run local OCR and attach the text to the request")
	pf.String("ocr-lang", "", "tesseract language")
	pf.Bool("save-captures", false, "keep captured screenshots on disk")
}

// setupConfig loads the config file and layers changed flags over it.
func setupConfig(cmd *cobra.Command) error {
	if err := readConfig(); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		config.Model, _ = flags.GetString("model")
	}
	if flags.Changed("base-url") {
		config.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("mode") {
		config.CaptureMode, _ = flags.GetString("mode")
	}
	if flags.Changed("display") {
		config.Display, _ = flags.GetInt("display")
	}
	if flags.Changed("ocr") {
		config.EnableOCR, _ = flags.GetBool("ocr")
	}
	if flags.Changed("ocr-lang") {
		config.OCRLanguage, _ = flags.GetString("ocr-lang")
	}
	if flags.Changed("save-captures") {
		config.SaveCaptures, _ = flags.GetBool("save-captures")
	}

	return validateConfig()
}
