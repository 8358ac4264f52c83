package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "xtask",
	Short: "Task tracker API server and maintenance commands",
	Long: `xtask serves the task tracker REST API and carries the maintenance commands
that operate on its database.

Running xtask without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file (defaults to $CONFIG_FILE)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
