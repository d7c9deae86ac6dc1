package cmd

import (
	"fmt"
	"time"

	"github.com/famcal/famcal/internal/auth"
	"github.com/famcal/famcal/internal/config"
	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagTokenUserId string
	flagTokenEmail  string
	flagTokenName   string
	flagTokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a session token with the configured secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(flagTokenUserId)
		if err != nil {
			return fmt.Errorf("--id must be a UUID: %w", err)
		}
		if flagTokenEmail == "" {
			return fmt.Errorf("--email is required")
		}
		cfg, err := config.Load(flagConfigPath)
		if err != nil {
			return err
		}
		if cfg.Auth.JwtSecret == "" {
			return fmt.Errorf("auth.jwtsecret is not configured")
		}

		token, err := auth.NewTokenValidator(cfg.Auth.JwtSecret).Issue(user.User{
			Id:          id,
			Email:       user.NormalizeEmail(flagTokenEmail),
			DisplayName: flagTokenName,
		}, flagTokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&flagTokenUserId, "id", "", "User ID (UUID)")
	tokenCmd.Flags().StringVar(&flagTokenEmail, "email", "", "User email")
	tokenCmd.Flags().StringVar(&flagTokenName, "name", "", "Full name")
	tokenCmd.Flags().DurationVar(&flagTokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
