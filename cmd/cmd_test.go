package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/OmniMind/internal/config"
)

// walletlessHome points OMNIMIND_HOME at a config whose profile has no wallet.
func walletlessHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("OMNIMIND_HOME", home)
	dir := filepath.Join(home, ".omnimind")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`active_profile = "local"

[profiles.local]
chain_id = 11155111
core_url = "http://127.0.0.1:1"
`), 0o600))
	overrides = config.Overrides{}
	t.Cleanup(func() { overrides = config.Overrides{} })
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCommandPrintsResult(t *testing.T) {
	walletlessHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "list my files", body["raw_command"])
		_, _ = w.Write([]byte(`{"status":"success","message":"Intent: ls","data":{"confidence":0.87}}`))
	}))
	defer srv.Close()

	stdout, stderr, err := run(t, "command", "--core-url", srv.URL, "list", "my", "files")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Status: success")
	assert.Contains(t, stdout, "Message: Intent: ls")
	assert.Contains(t, stdout, "Confidence: 87.0%")
	assert.Contains(t, stdout, `"confidence": 0.87`)
	assert.Contains(t, stderr, "Sending command to OmniMind Core...")
}

func TestCommandFailureReturnsError(t *testing.T) {
	walletlessHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	stdout, _, err := run(t, "command", "--core-url", srv.URL, "help")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, stdout, "Status: error")
	assert.Contains(t, stdout, "Confidence: 0.0%")
}

func TestBalanceWithoutWallet(t *testing.T) {
	walletlessHome(t)
	_, _, err := run(t, "balance")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Wallet not available.")
}

func TestUnknownProfileFlag(t *testing.T) {
	walletlessHome(t)
	_, _, err := run(t, "balance", "--profile", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile 'nope' does not exist")
}

func TestDescribeProfile(t *testing.T) {
	var b bytes.Buffer
	describeProfile(&b, "sepolia", config.Profile{
		RPCURL:      "https://rpc.example",
		TokenSymbol: "MIND",
		ChainID:     11155111,
	}, true, "")

	out := b.String()
	assert.True(t, strings.HasPrefix(out, "Profile: sepolia (active)\n"))
	assert.Contains(t, out, "RPC URL: https://rpc.example")
	assert.Contains(t, out, "Keystore: Not set")
	assert.Contains(t, out, "Chain ID: 11155111")
	assert.Contains(t, out, "Poll interval: 4s")
}

func TestRemoveProfile(t *testing.T) {
	cfg := &config.Config{
		ActiveProfile: "b",
		Profiles:      map[string]config.Profile{"a": {}, "b": {}},
	}
	removeProfile(cfg, "b")
	assert.Equal(t, "a", cfg.ActiveProfile)

	removeProfile(cfg, "a")
	assert.Equal(t, config.DefaultProfileName, cfg.ActiveProfile)
	assert.Contains(t, cfg.Profiles, config.DefaultProfileName)

	cfg.Profiles["x"] = config.Profile{}
	removeProfile(cfg, "x")
	assert.Equal(t, config.DefaultProfileName, cfg.ActiveProfile)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("http://127.0.0.1:3030"))
	assert.Error(t, validateURL("127.0.0.1:3030"))
	assert.NoError(t, validateAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	assert.Error(t, validateAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD"))
	assert.NoError(t, validateDuration("4s"))
	assert.Error(t, validateDuration("-1s"))
	assert.NoError(t, validateChainID("11155111"))
	assert.Error(t, validateChainID("0"))
	assert.Error(t, validateRequired("  "))
}
