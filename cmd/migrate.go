package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tt-tournament/config"
	"github.com/Dosada05/tt-tournament/db"
	"github.com/Dosada05/tt-tournament/middleware"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
				return err
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.StorePostgres {
				return errors.New("migrate requires STORE_DRIVER=postgres")
			}

			dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBTimeout)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer dbConn.Close()

			if err := db.Migrate(cmd.Context(), dbConn); err != nil {
				return err
			}
			logger.Info("schema applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema instead of applying it")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token for the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := middleware.IssueToken(cfg.JWTSecretKey, subject, middleware.Role(role), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "organizer", "token subject")
	cmd.Flags().StringVar(&role, "role", string(middleware.RoleOrganizer), "role claim (admin|organizer|viewer)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
