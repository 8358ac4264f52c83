package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nxsys/task-tracker/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample organisation and task trees",
	Long: `Load five sample accounts and a set of task trees spread across every category.
All accounts share the password "` + seed.DefaultPassword + `".

The command refuses to run when any sample account already exists.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := seed.Run(cmd.Context(), env.store.Users, env.store.Tasks, time.Now(), env.cfg.Auth.BcryptCost, env.logger)
	if errors.Is(err, seed.ErrAlreadySeeded) {
		fmt.Fprintln(cmd.OutOrStdout(), "sample data already present, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created %d users and %d tasks\n\nTest accounts (password: %s):\n",
		len(result.Users), result.Tasks, seed.DefaultPassword)
	for _, u := range result.Users {
		fmt.Fprintf(out, "  - %s (Level %d) %v\n", u.Email, u.SeniorityLevel, u.Categories)
	}
	return nil
}
