package cmd

import (
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/OmniMind/internal/config"
)

var useCmd = &cobra.Command{
	Use:   "use [profile-name]",
	Short: "Switch to a profile and start the dashboard",
	Long:  `Switch to the specified profile and immediately start the dashboard.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		profileName := strings.ToLower(args[0])

		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		cfg.ActiveProfile = profileName
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		overrides.Profile = profileName
		if err := cfg.Apply(overrides); err != nil {
			log.Fatalf("Failed to apply flags: %v", err)
		}
		runDashboard(cfg)
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}
