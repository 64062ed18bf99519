package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title        Motion Security API
// @version      1.0
// @description  Motion-triggered security lighting with face recognition.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

var (
	// configPath overrides configs/config.yml.
	configPath string

	rootCmd = &cobra.Command{
		Use:   "motion-security",
		Short: "Motion-triggered security light with face recognition.",
		Long: `Runs the security service: on motion in the dark the light turns on, the
camera looks for a registered face for the face window, and the light takes the
visitor's preferred colour (or red for strangers) until the actuation window ends.

Without a subcommand the service is started.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
)

func main() {
	rootCmd.AddCommand(serveCmd, registerCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default configs/config.yml)")
}
