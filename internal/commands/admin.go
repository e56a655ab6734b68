package commands

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/gym-portal/internal/repository/mongo"
	"alcyxob/gym-portal/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account directly in the database.
Admins cannot register through the API, so the first one is created here.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmail == "" || adminPassword == "" {
			return fmt.Errorf("--email and --password are required")
		}
		if adminName == "" {
			adminName = "Administrator"
		}

		return withDatabase(func(ctx context.Context, db *mongodriver.Database) error {
			if err := mongo.EnsureIndexes(ctx, db); err != nil {
				return fmt.Errorf("creating indexes: %w", err)
			}
			users := service.NewUserService(mongo.NewMongoUserRepository(db))
			admin, err := users.BootstrapAdmin(ctx, adminName, adminEmail, adminPassword)
			if errors.Is(err, service.ErrUserAlreadyExists) {
				color.Yellow("An account for %s already exists\n", adminEmail)
				return nil
			}
			if err != nil {
				return err
			}
			color.Green("Created admin %s (%s)\n", admin.Email, admin.ID.Hex())
			return nil
		})
	},
}

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the MongoDB indexes the portal relies on",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, db *mongodriver.Database) error {
			if err := mongo.EnsureIndexes(ctx, db); err != nil {
				return err
			}
			color.Green("Indexes are up to date on %s\n", globalConfig.Database.Name)
			return nil
		})
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "display name (default \"Administrator\")")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "initial password")
}
