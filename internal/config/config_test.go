package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OMNIMIND_HOME", home)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultProfileName, cfg.ActiveProfile)
	assert.FileExists(t, filepath.Join(home, ".omnimind", "config.toml"))

	current := cfg.Current()
	assert.Equal(t, SepoliaChainID, current.ChainID)
	assert.Equal(t, DefaultCoreURL, current.CoreURL)
	assert.Equal(t, DefaultTokenSymbol, current.TokenSymbol)
	assert.False(t, cfg.IsValid(), "token address is not configured yet")
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Setenv("OMNIMIND_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Profiles["local"] = Profile{
		RPCURL:       "http://127.0.0.1:8545",
		KeystoreDir:  "/tmp/keys",
		TokenAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ChainID:      31337,
		CoreURL:      "http://127.0.0.1:9000",
		PollInterval: "1s",
	}
	cfg.ActiveProfile = "local"
	require.NoError(t, cfg.Save())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "local", loaded.ActiveProfile)
	assert.True(t, loaded.IsValid())

	current := loaded.Current()
	assert.Equal(t, uint64(31337), current.ChainID)
	assert.Equal(t, time.Second, current.Poll())
	assert.Equal(t, DefaultTokenSymbol, current.TokenSymbol)
}

func TestActiveProfileEnvOverride(t *testing.T) {
	t.Setenv("OMNIMIND_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.Profiles["local"] = Profile{RPCURL: "http://127.0.0.1:8545"}
	require.NoError(t, cfg.Save())

	t.Setenv("OMNIMIND_ACTIVE_PROFILE", "local")
	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "local", loaded.ActiveProfile)
	assert.Equal(t, "http://127.0.0.1:8545", loaded.Current().RPCURL)
}

func TestMissingActiveProfileFallsBackToFirst(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OMNIMIND_HOME", home)

	path := filepath.Join(home, ".omnimind", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
active_profile = "gone"

[profiles.beta]
rpc_url = "http://beta"

[profiles.alpha]
rpc_url = "http://alpha"
`), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "alpha", cfg.ActiveProfile)
	assert.Equal(t, "http://alpha", cfg.Current().RPCURL)
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("OMNIMIND_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.NoError(t, cfg.Apply(Overrides{CoreURL: "http://core", RPCURL: "http://rpc"}))
	assert.Equal(t, "http://core", cfg.Current().CoreURL)
	assert.Equal(t, "http://rpc", cfg.Current().RPCURL)

	err = cfg.Apply(Overrides{Profile: "nope"})
	assert.EqualError(t, err, "profile 'nope' does not exist")
}

func TestPollFallsBackOnGarbage(t *testing.T) {
	assert.Equal(t, DefaultPollInterval, Profile{PollInterval: "soon"}.Poll())
	assert.Equal(t, DefaultPollInterval, Profile{PollInterval: "-1s"}.Poll())
	assert.Equal(t, 2*time.Second, Profile{PollInterval: "2s"}.Poll())
}
