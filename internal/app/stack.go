package app

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Rorical/OmniMind/internal/config"
	"github.com/Rorical/OmniMind/internal/omnicore"
	"github.com/Rorical/OmniMind/internal/session"
	"github.com/Rorical/OmniMind/internal/token"
	"github.com/Rorical/OmniMind/internal/wallet"
)

const coreRequestTimeout = 30 * time.Second

// Stack is a session controller together with the resources it owns. Both
// the dashboard and the one-shot commands build one per run.
type Stack struct {
	Controller *session.Controller
	provider   *wallet.KeystoreProvider
}

// NewStack wires the wallet, the token contract and the Core client for the
// given profile. A missing or unreachable wallet is not an error: the
// controller reports it to the user instead.
func NewStack(ctx context.Context, profile config.Profile, logger *slog.Logger) *Stack {
	opts := session.Options{
		Core:            omnicore.NewClient(profile.CoreURL, &http.Client{Timeout: coreRequestTimeout}, logger),
		RequiredChainID: new(big.Int).SetUint64(profile.ChainID),
		Symbol:          profile.TokenSymbol,
		Logger:          logger,
	}

	stack := &Stack{}
	provider, err := wallet.NewKeystoreProvider(ctx, wallet.KeystoreConfig{
		RPCURL:       profile.RPCURL,
		KeystoreDir:  profile.KeystoreDir,
		PollInterval: profile.Poll(),
		Logger:       logger,
	})
	switch {
	case errors.Is(err, wallet.ErrUnavailable):
		logger.Info("no wallet configured for profile")
	case err != nil:
		logger.Warn("wallet unavailable", "rpc_url", profile.RPCURL, "err", err)
	default:
		stack.provider = provider
		opts.Provider = provider
		if common.IsHexAddress(profile.TokenAddress) {
			address := common.HexToAddress(profile.TokenAddress)
			opts.BindToken = func(wallet.Signer) (session.Token, error) {
				return token.BindERC20(address, provider.Client()), nil
			}
		} else {
			logger.Warn("token_address is not a valid address", "token_address", profile.TokenAddress)
		}
	}

	stack.Controller = session.NewController(opts)
	return stack
}

// SetApprover installs the passphrase prompt used when connecting.
func (s *Stack) SetApprover(approver wallet.Approver) {
	if s.provider != nil {
		s.provider.SetApprover(approver)
	}
}

func (s *Stack) Close() {
	if s.provider != nil {
		s.provider.Close()
	}
}

// OpenLogFile opens the dashboard log. OMNIMIND_LOG_LEVEL selects the level.
func OpenLogFile() (*slog.Logger, *os.File, error) {
	path, err := config.LogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: LogLevel(slog.LevelInfo)})), f, nil
}

// LogLevel reads OMNIMIND_LOG_LEVEL, falling back to def.
func LogLevel(def slog.Level) slog.Level {
	var level slog.Level
	if v := os.Getenv("OMNIMIND_LOG_LEVEL"); v != "" && level.UnmarshalText([]byte(v)) == nil {
		return level
	}
	return def
}
