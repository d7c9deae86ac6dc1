package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var flagConfigPath string

var rootCmd = &cobra.Command{
	Use:   "famcal",
	Short: "famcal household calendar backend",
	Long: `famcal serves the household calendar API: groups, invitations,
shared events and todos, and live updates for connected clients.

  famcal serve              Run migrations and start the HTTP server
  famcal migrate up         Apply pending migrations
  famcal migrate down 1     Roll back the last migration
  famcal token --id X ...   Sign a session token for local testing`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "./config/application.yaml", "Path to the YAML configuration file")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		return err
	}
	return nil
}
