package main

import (
	"log"
	"time"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Analyze the screen on a fixed interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initVisionClient(); err != nil {
			return err
		}

		seconds, _ := cmd.Flags().GetInt("interval")
		if !cmd.Flags().Changed("interval") {
			seconds = config.WatchInterval
		}

		interval := time.Duration(seconds) * time.Second
		if err := monitor.Start(cmd.Context(), interval); err != nil {
			return err
		}
		log.Printf("Watching the screen every %s, Ctrl-C to stop\n", interval)

		monitor.Wait()
		return nil
	},
}

func init() {
	watchCmd.Flags().Int("interval", 30, "seconds between analyses")
	rootCmd.AddCommand(watchCmd)
}
