package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	port     int
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the HTTP web server with an HTML lookup page and a JSON API.

The web server offers the same lookup -> results flow as the TUI: enter a roll
number, review the metrics with their severity, then request a prediction.
JSON endpoints live under /api.`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to run the server on")
}

func runServe() {
	s := LoadSettings()

	fmt.Printf("Starting Dropout Watch web server...\n")
	fmt.Printf("Backend: %s\n", s.Client.BaseURL())
	fmt.Printf("Port: %d\n\n", port)

	if err := StartServer(s, port); err != nil {
		log.Fatalf("Server failed: %v\n", err)
	}
}
