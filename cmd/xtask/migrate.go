package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply the embedded schema migrations for the configured backend.

Examples:
  xtask migrate
  DB_DRIVER=postgres POSTGRES_DSN=postgres://... xtask migrate
  xtask migrate status`,
	RunE: runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied migration version",
	RunE:  runMigrateStatus,
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer env.Close()

	status, err := env.store.MigrationStatus(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", env.store.Driver, status.CurrentVersion)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer env.Close()

	status, err := env.store.MigrationStatus(cmd.Context())
	if err != nil {
		return err
	}
	state := "up to date"
	switch {
	case status.Dirty:
		state = "dirty"
	case status.Pending:
		state = "pending"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "driver:  %s\nversion: %d of %d\nstate:   %s\n",
		env.store.Driver, status.CurrentVersion, status.LatestVersion, state)
	return nil
}
