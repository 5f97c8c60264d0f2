package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// SepoliaChainID is the network the MindCoin contract is deployed on.
	SepoliaChainID uint64 = 11155111

	DefaultProfileName  = "sepolia"
	DefaultTokenSymbol  = "MIND"
	DefaultCoreURL      = "http://127.0.0.1:3030"
	DefaultRPCURL       = "https://ethereum-sepolia-rpc.publicnode.com"
	DefaultPollInterval = 4 * time.Second

	configDirName  = ".omnimind"
	configFileName = "config.toml"
	logFileName    = "omnimind.log"
)

var ErrNoProfiles = errors.New("no profiles defined")

// Profile describes one wallet/network/core combination the dashboard can run against.
type Profile struct {
	RPCURL       string `mapstructure:"rpc_url" toml:"rpc_url"`
	KeystoreDir  string `mapstructure:"keystore_dir" toml:"keystore_dir"`
	TokenAddress string `mapstructure:"token_address" toml:"token_address"`
	TokenSymbol  string `mapstructure:"token_symbol" toml:"token_symbol,omitempty"`
	ChainID      uint64 `mapstructure:"chain_id" toml:"chain_id"`
	CoreURL      string `mapstructure:"core_url" toml:"core_url"`
	PollInterval string `mapstructure:"poll_interval" toml:"poll_interval,omitempty"`
}

// Overrides carries command-line values that win over the active profile.
type Overrides struct {
	Profile     string
	RPCURL      string
	CoreURL     string
	KeystoreDir string
}

type Config struct {
	ActiveProfile  string             `mapstructure:"active_profile" toml:"active_profile"`
	Profiles       map[string]Profile `mapstructure:"profiles" toml:"profiles"`
	path           string
	currentProfile *Profile
}

func LoadConfig() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// DefaultProfile returns the Sepolia profile written on first run.
func DefaultProfile() Profile {
	keystoreDir := ""
	if dir, err := HomeDir(); err == nil {
		keystoreDir = filepath.Join(dir, configDirName, "keystore")
	}
	return Profile{
		RPCURL:       DefaultRPCURL,
		KeystoreDir:  keystoreDir,
		TokenSymbol:  DefaultTokenSymbol,
		ChainID:      SepoliaChainID,
		CoreURL:      DefaultCoreURL,
		PollInterval: DefaultPollInterval.String(),
	}
}

// IsValid reports whether the active profile has enough to reach a wallet and a token.
func (c *Config) IsValid() bool {
	return c.currentProfile != nil &&
		c.currentProfile.RPCURL != "" &&
		c.currentProfile.KeystoreDir != "" &&
		c.currentProfile.TokenAddress != ""
}

// Current returns the active profile with defaults filled in.
func (c *Config) Current() Profile {
	if c.currentProfile == nil {
		return DefaultProfile()
	}
	p := *c.currentProfile
	if p.TokenSymbol == "" {
		p.TokenSymbol = DefaultTokenSymbol
	}
	if p.ChainID == 0 {
		p.ChainID = SepoliaChainID
	}
	if p.CoreURL == "" {
		p.CoreURL = DefaultCoreURL
	}
	return p
}

// Poll returns the chain polling interval of the active profile.
func (p Profile) Poll() time.Duration {
	if p.PollInterval == "" {
		return DefaultPollInterval
	}
	d, err := time.ParseDuration(p.PollInterval)
	if err != nil || d <= 0 {
		return DefaultPollInterval
	}
	return d
}

// Apply layers command-line overrides on top of the loaded profile.
func (c *Config) Apply(o Overrides) error {
	if o.Profile != "" {
		profile, exists := c.Profiles[strings.ToLower(o.Profile)]
		if !exists {
			return fmt.Errorf("profile '%s' does not exist", o.Profile)
		}
		c.ActiveProfile = strings.ToLower(o.Profile)
		c.currentProfile = &profile
	}
	if c.currentProfile == nil {
		p := DefaultProfile()
		c.currentProfile = &p
	}
	if o.RPCURL != "" {
		c.currentProfile.RPCURL = o.RPCURL
	}
	if o.CoreURL != "" {
		c.currentProfile.CoreURL = o.CoreURL
	}
	if o.KeystoreDir != "" {
		c.currentProfile.KeystoreDir = o.KeystoreDir
	}
	return nil
}

// ProfileNames returns the profile names in a stable order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HomeDir resolves the directory holding .omnimind, honouring OMNIMIND_HOME.
func HomeDir() (string, error) {
	if home := os.Getenv("OMNIMIND_HOME"); home != "" {
		return home, nil
	}
	return os.UserHomeDir()
}

func ConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configDirName, configFileName), nil
}

// LogPath is where the dashboard writes its log while the TUI owns the terminal.
func LogPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configDirName, logFileName), nil
}

func ensureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}

func loadConfigFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetDefault("active_profile", DefaultProfileName)
	v.SetEnvPrefix("OMNIMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	config.ActiveProfile = strings.ToLower(config.ActiveProfile)
	config.path = configPath

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			DefaultProfileName: DefaultProfile(),
		},
		ActiveProfile: DefaultProfileName,
		path:          configPath,
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(configPath, data, 0o600)
}

func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		var err error
		configPath, err = ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return ErrNoProfiles
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile in name order.
		name := c.ProfileNames()[0]
		c.ActiveProfile = name
		profile = c.Profiles[name]
	}

	c.currentProfile = &profile
	return nil
}
