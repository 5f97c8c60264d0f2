package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/OmniMind/internal/config"
	"github.com/Rorical/OmniMind/internal/wallet"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage dashboard profiles",
	Long:  `Manage profiles: which RPC endpoint, keystore, token contract and OmniMind Core to use.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			describeProfile(os.Stdout, name, cfg.Profiles[name], name == cfg.ActiveProfile, "  ")
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := strings.ToLower(args[0])
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}
		describeProfile(os.Stdout, profileName, profile, profileName == cfg.ActiveProfile, "")
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label:    "Profile name",
				Validate: validateRequired,
			}
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}
		profileName = strings.ToLower(profileName)

		if _, exists := cfg.Profiles[profileName]; exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		if cfg.Profiles == nil {
			cfg.Profiles = make(map[string]config.Profile)
		}
		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName, err := selectProfile(cfg, args, "Select profile to edit", "")
		if err != nil {
			log.Fatalf("Selection failed: %v", err)
		}

		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		profile, err = promptProfile(profile)
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}
		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName, err := selectProfile(cfg, args, "Select profile to delete", "")
		if err != nil {
			log.Fatalf("Selection failed: %v", err)
		}

		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'? (y/N)", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return
		}

		removeProfile(cfg, profileName)

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' deleted successfully!\n", profileName)
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		if len(args) == 0 && len(cfg.Profiles) < 2 {
			fmt.Println("No other profiles available to switch to")
			return
		}

		profileName, err := selectProfile(cfg, args, "Select profile to switch to", cfg.ActiveProfile)
		if err != nil {
			log.Fatalf("Selection failed: %v", err)
		}

		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		cfg.ActiveProfile = profileName

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Switched to profile '%s'\n", profileName)
	},
}

// selectProfile takes the name from args or lets the user pick one, leaving out skip.
func selectProfile(cfg *config.Config, args []string, label, skip string) (string, error) {
	if len(args) > 0 {
		return strings.ToLower(args[0]), nil
	}

	var names []string
	for _, name := range cfg.ProfileNames() {
		if name != skip {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", config.ErrNoProfiles
	}

	prompt := promptui.Select{
		Label: label,
		Items: names,
	}
	_, name, err := prompt.Run()
	return name, err
}

// removeProfile deletes name, moving the active profile elsewhere and
// recreating the default one when nothing is left.
func removeProfile(cfg *config.Config, name string) {
	delete(cfg.Profiles, name)
	if cfg.ActiveProfile != name {
		return
	}
	if names := cfg.ProfileNames(); len(names) > 0 {
		cfg.ActiveProfile = names[0]
		return
	}
	cfg.ActiveProfile = config.DefaultProfileName
	cfg.Profiles[config.DefaultProfileName] = config.DefaultProfile()
}

func promptProfile(base config.Profile) (config.Profile, error) {
	p := base
	var err error

	steps := []struct {
		label    string
		target   *string
		validate promptui.ValidateFunc
	}{
		{"RPC URL", &p.RPCURL, validateURL},
		{"Keystore directory", &p.KeystoreDir, validateRequired},
		{"Token contract address", &p.TokenAddress, validateAddress},
		{"Token symbol", &p.TokenSymbol, validateRequired},
		{"OmniMind Core URL", &p.CoreURL, validateURL},
		{"Chain poll interval", &p.PollInterval, validateDuration},
	}
	for _, step := range steps {
		prompt := promptui.Prompt{
			Label:     step.label,
			Default:   *step.target,
			AllowEdit: true,
			Validate:  step.validate,
		}
		if *step.target, err = prompt.Run(); err != nil {
			return base, err
		}
	}

	chainPrompt := promptui.Prompt{
		Label:     "Chain ID",
		Default:   strconv.FormatUint(p.ChainID, 10),
		AllowEdit: true,
		Validate:  validateChainID,
	}
	chainID, err := chainPrompt.Run()
	if err != nil {
		return base, err
	}
	p.ChainID, _ = strconv.ParseUint(chainID, 10, 64)

	return p, nil
}

func describeProfile(w io.Writer, name string, p config.Profile, active bool, indent string) {
	marker := ""
	if active {
		marker = " (active)"
	}
	fmt.Fprintf(w, "%sProfile: %s%s\n", indent, name, marker)
	fmt.Fprintf(w, "%s  RPC URL: %s\n", indent, orUnset(p.RPCURL))
	fmt.Fprintf(w, "%s  Keystore: %s\n", indent, orUnset(p.KeystoreDir))
	fmt.Fprintf(w, "%s  Token: %s %s\n", indent, orUnset(p.TokenAddress), p.TokenSymbol)
	fmt.Fprintf(w, "%s  Chain ID: %d\n", indent, p.ChainID)
	fmt.Fprintf(w, "%s  OmniMind Core: %s\n", indent, orUnset(p.CoreURL))
	fmt.Fprintf(w, "%s  Poll interval: %s\n", indent, p.Poll())
}

func orUnset(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func validateRequired(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value is required")
	}
	return nil
}

func validateURL(input string) error {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("enter an absolute URL such as http://127.0.0.1:3030")
	}
	return nil
}

func validateAddress(input string) error {
	if !wallet.IsAddress(strings.TrimSpace(input)) {
		return errors.New("enter a 0x-prefixed contract address")
	}
	return nil
}

func validateDuration(input string) error {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return errors.New("enter a positive duration such as 4s")
	}
	return nil
}

func validateChainID(input string) error {
	id, err := strconv.ParseUint(input, 10, 64)
	if err != nil || id == 0 {
		return errors.New("enter a positive chain id")
	}
	return nil
}

func init() {
	// Add subcommands to profile
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
