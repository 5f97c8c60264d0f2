package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rorical/OmniMind/internal/app"
	"github.com/Rorical/OmniMind/internal/config"
)

// overrides holds the persistent flags shared by every subcommand.
var overrides config.Overrides

var rootCmd = &cobra.Command{
	Use:   "omnimind",
	Short: "OmniMind dashboard for MindCoin and OmniMind Core",
	Long: `OmniMind is a terminal dashboard that connects a local Ethereum keystore,
shows and transfers the MindCoin (MIND) balance on Sepolia, and relays
free-text commands to a running OmniMind Core service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		runDashboard(cfg)
	},
}

// loadConfig reads the config file and layers the command-line flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(overrides); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runDashboard(cfg *config.Config) {
	application, err := app.NewApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&overrides.Profile, "profile", "p", "", "profile to use instead of the active one")
	flags.StringVar(&overrides.RPCURL, "rpc-url", "", "Ethereum JSON-RPC endpoint")
	flags.StringVar(&overrides.CoreURL, "core-url", "", "OmniMind Core base URL")
	flags.StringVar(&overrides.KeystoreDir, "keystore", "", "keystore directory")

	// Add subcommands
	rootCmd.AddCommand(profileCmd)
}
