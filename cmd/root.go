package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"dropoutwatch/internal/config"
	"dropoutwatch/internal/normalize"
	"dropoutwatch/internal/riskapi"
)

var (
	dataDir          string
	apiURL           string
	assignmentsTotal float64
	timeout          time.Duration

	rootCmd = &cobra.Command{
		Use:   "dropoutwatch",
		Short: "Dropout Watch - Student dropout-risk lookup and prediction",
		Long: `Dropout Watch is a CLI/TUI client for a student dropout-risk backend.
It looks up a student by roll number, shows engagement metrics with their
severity, and requests a dropout prediction with risk factors and
recommended interventions.

When run without commands, it launches an interactive TUI.
Use subcommands for CLI mode with JSON output.`,
		Run: func(cmd *cobra.Command, args []string) {
			// No subcommand specified - launch TUI
			LaunchTUI(LoadSettings())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", ".dropoutwatch/", "Directory for the error log")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (default $DROPOUT_API_URL or "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().Float64Var(&assignmentsTotal, "assignments-total", 0, "Assignment total used when a record has none (default $DROPOUT_ASSIGNMENTS_TOTAL or 10)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Backend request timeout (default $DROPOUT_HTTP_TIMEOUT or 30s)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// RootCommand exposes the command tree, e.g. for agent tool generation
func RootCommand() *cobra.Command {
	return rootCmd
}

// Settings is everything a command needs, resolved once from env and flags
type Settings struct {
	DataDir string
	Config  *config.Config
	Client  *riskapi.Client
	Options normalize.Options
}

// LoadSettings merges the environment with command-line flags. Flags win.
func LoadSettings() *Settings {
	cfg := config.Load()
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if assignmentsTotal > 0 {
		cfg.DefaultAssignmentsTotal = assignmentsTotal
	}
	if timeout > 0 {
		cfg.HTTPTimeout = timeout
	}

	clientOpts := []riskapi.Option{riskapi.WithTimeout(cfg.HTTPTimeout)}
	if SetupLogger != nil {
		if l := SetupLogger(dataDir, cfg.Debug); l != nil {
			clientOpts = append(clientOpts, riskapi.WithLogger(l))
		}
	}

	return &Settings{
		DataDir: dataDir,
		Config:  cfg,
		Client:  riskapi.NewClient(cfg.APIURL, clientOpts...),
		Options: normalize.Options{DefaultAssignmentsTotal: cfg.DefaultAssignmentsTotal},
	}
}
