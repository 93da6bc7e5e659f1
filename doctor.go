package main

import (
	"fmt"
	"os"

	"github.com/kbinani/screenshot"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that screenseer can run on this machine",
	Run: func(cmd *cobra.Command, args []string) {
		if configPath, err := getConfigPath(); err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Printf("config:    %s\n", configPath)
			} else {
				fmt.Printf("config:    %s (not present, defaults in use)\n", configPath)
			}
		}

		if _, err := resolveAPIKey(); err != nil {
			fmt.Println("api key:   MISSING (set SCREENSEER_API_KEY or OPENAI_API_KEY)")
		} else {
			fmt.Printf("api key:   found (%s)\n", apiKeySource())
		}

		displays := screenshot.NumActiveDisplays()
		if displays == 0 {
			fmt.Println("displays:  NONE (is a desktop session running?)")
		} else {
			fmt.Printf("displays:  %d", displays)
			for i := 0; i < displays; i++ {
				bounds := screenshot.GetDisplayBounds(i)
				fmt.Printf("  [%d] %dx%d", i, bounds.Dx(), bounds.Dy())
			}
			fmt.Println()
		}

		if tesseractAvailable() {
			fmt.Println("tesseract: found")
		} else {
			fmt.Println("tesseract: not found (OCR will be skipped)")
		}

		fmt.Printf("model:     %s\n", config.Model)
		if config.BaseURL != "" {
			fmt.Printf("base url:  %s\n", config.BaseURL)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// apiKeySource names where the credential came from without echoing it.
func apiKeySource() string {
	if os.Getenv("SCREENSEER_API_KEY") != "" {
		return "SCREENSEER_API_KEY"
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return "OPENAI_API_KEY"
	}
	return "config file"
}
