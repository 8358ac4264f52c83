package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/service"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a rank-1 user with every category",
	Long: `Create a rank-1 account. Registration over the API requires a rank-1 caller, so
a fresh database needs one created out of band.

Examples:
  xtask create-admin --email ceo@example.com --name "Alice Chen" --password s3cret`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "account email")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "initial password")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer env.Close()

	users := service.NewUserService(service.UserDependencies{UserRepo: env.store.Users, Logger: env.logger})
	authService := service.NewAuthService(env.cfg.Auth, service.AuthDependencies{
		UserRepo:    env.store.Users,
		UserService: users,
		Logger:      env.logger,
	})

	user, err := authService.Provision(cmd.Context(), service.RegisterInput{
		Email:          adminEmail,
		Password:       adminPassword,
		Name:           adminName,
		SeniorityLevel: domain.AdminSeniority,
		Categories:     domain.AllCategories,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created rank-1 user %s (id %d)\n", user.Email, user.ID)
	return nil
}
