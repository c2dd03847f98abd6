package main

import (
	"context"
	"fmt"
	"lms/config"
	"lms/database"
	"lms/models"
	"lms/services"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var adminPermissions = []string{
	models.PermissionManageCatalog,
	models.PermissionManageEnrollments,
	models.PermissionManageBadges,
	models.PermissionManagePermissions,
}

func connect() *services.Services {
	config.LoadConfig()
	database.ConnectDb()
	return services.New(database.Database.Db, services.Options{})
}

var rootCmd = &cobra.Command{
	Use:   "lmsctl",
	Short: "Maintenance tasks for the LMS database",
}

var seedBadgesCmd = &cobra.Command{
	Use:   "seed-badges",
	Short: "Insert the default badge catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := connect().Badges.SeedCatalog(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d badge(s), %d already present\n", n, len(services.DefaultCatalog)-n)
		return nil
	},
}

var bootstrapAdminCmd = &cobra.Command{
	Use:   "bootstrap-admin <name> <email>",
	Short: "Create an admin user holding every admin permission",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc := connect()

		var admin models.User
		email := strings.ToLower(strings.TrimSpace(args[1]))
		err := database.Database.Db.Where("email = ?", email).First(&admin).Error
		if err != nil {
			user, err := svc.Access.CreateUser(ctx, args[0], email, models.RoleAdmin, nil)
			if err != nil {
				return err
			}
			admin = *user
		}

		for _, perm := range adminPermissions {
			if err := svc.Access.GrantPermission(ctx, admin.ID, perm); err != nil {
				return err
			}
		}
		fmt.Printf("Admin %s (id %d) holds: %s\n", admin.Email, admin.ID, strings.Join(adminPermissions, ", "))
		return nil
	},
}

var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Recalculate stored progress for every enrollment",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := connect().Progress.RecalculateAll(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Recalculated %d enrollment(s)\n", n)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(seedBadgesCmd, bootstrapAdminCmd, recalculateCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
