package commands

import (
	"context"
	"fmt"
	"time"

	"alcyxob/gym-portal/internal/config"
	"alcyxob/gym-portal/internal/repository/mongo"

	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// commandTimeout bounds every database round trip made by a single command.
const commandTimeout = 1 * time.Minute

var (
	configPath   string
	globalConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gymctl",
	Short: "Operator tool for the gym portal",
	Long: `gymctl performs operator tasks against the gym portal database:
bootstrapping the first admin, creating indexes, and correcting member balances.
It reads the same config.yaml and environment variables as the server.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.Database.URI == "" {
			return config.ErrMissingDatabaseURI
		}
		globalConfig = cfg
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// withDatabase connects to MongoDB, runs fn and disconnects again.
func withDatabase(fn func(ctx context.Context, db *mongodriver.Database) error) error {
	client, err := mongo.ConnectDB(globalConfig.Database.URI)
	if err != nil {
		return fmt.Errorf("connecting to MongoDB: %w", err)
	}
	defer func() {
		_ = mongo.DisconnectDB(client)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return fn(ctx, client.Database(globalConfig.Database.Name))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yaml and .env")

	// Add all commands
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(ensureIndexesCmd)
	rootCmd.AddCommand(grantSessionsCmd)
	rootCmd.AddCommand(applyPurchaseCmd)
	rootCmd.AddCommand(productsCmd)
}
