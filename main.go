package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/junaidrashid-git/pawshop-api/config"
	"github.com/junaidrashid-git/pawshop-api/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pawshop",
	Short: "Pet shop storefront API",
	Long: `pawshop serves the storefront: catalog browsing, carts for guests and
signed-in customers, checkout, order tracking and the admin panel API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogDev)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("PAWSHOP_CONFIG"), "path to a YAML config file")

	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "products.xlsx", "file to write")
	importCmd.Flags().StringVarP(&importPath, "in", "i", "", "workbook to read")
	_ = importCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(serveCmd, migrateCmd, exportCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
