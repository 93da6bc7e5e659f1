package main

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the control HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initVisionClient(); err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("listen")
		if !cmd.Flags().Changed("listen") {
			addr = config.ListenAddress
		}

		defer monitor.Stop()
		return startServer(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("listen", "localhost:9898", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}
