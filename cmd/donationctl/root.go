package main

import (
	"fmt"
	"os"

	"github.com/sankha1545/Bhakasamilani/internal/config"
	"github.com/sankha1545/Bhakasamilani/internal/database"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/logic"
	"github.com/spf13/cobra"
)

const (
	defaultAdminEmail    = "admin@trust.org"
	defaultAdminPassword = "Admin@12345"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "donationctl",
		Short:         "Operational commands for the donation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedAdminCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back versioned schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return database.MigrateUp(cfg.Database.URL())
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return database.MigrateDown(cfg.Database.URL(), steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}

func newSeedAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the initial admin user if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("INIT_ADMIN_PASSWORD")
			}
			if password == "" {
				password = defaultAdminPassword
				logger.Warn("INIT_ADMIN_PASSWORD not set, using the default admin password")
			}

			cfg := config.Load()
			db, err := database.Init(cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close(db)

			created, err := logic.SeedAdmin(db, email, password, logic.SeedPasswordCost)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded admin user: %s\n", email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin user already exists: %s\n", email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", defaultAdminEmail, "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (defaults to $INIT_ADMIN_PASSWORD)")
	return cmd
}
