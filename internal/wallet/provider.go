// Package wallet models the account/signing side of the dashboard: a provider
// that hands out authorized accounts, signers and the current chain, and pushes
// account and chain changes to subscribers.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

var (
	ErrUnavailable    = errors.New("wallet not available")
	ErrRejected       = errors.New("user rejected the request")
	ErrUnknownAccount = errors.New("account is not authorized")
)

// Event is a change notification pushed by a Provider.
type Event interface {
	walletEvent()
}

// AccountsChanged carries the provider's full authorized account list.
// Entries are untyped because the provider protocol is loosely typed JSON.
type AccountsChanged struct {
	Accounts []any
}

func (AccountsChanged) walletEvent() {}

// ChainChanged reports that the provider switched networks.
type ChainChanged struct {
	ChainID *big.Int
}

func (ChainChanged) walletEvent() {}

// Signer can authorize transactions for a single account.
type Signer interface {
	Address() common.Address
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
}

// Provider is the wallet the dashboard talks to.
type Provider interface {
	// ListAccounts returns accounts the user already authorized, without prompting.
	ListAccounts(ctx context.Context) ([]any, error)
	// RequestAccounts asks the user for access if nothing is authorized yet.
	RequestAccounts(ctx context.Context) ([]any, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Signer(ctx context.Context, account string) (Signer, error)
	Disconnect(ctx context.Context) error
	Subscribe(ch chan<- Event) event.Subscription
}

// Approver decides whether an account may be unlocked and supplies its passphrase.
type Approver interface {
	ApproveAccount(ctx context.Context, account string) (string, error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, account string) (string, error)

func (f ApproverFunc) ApproveAccount(ctx context.Context, account string) (string, error) {
	return f(ctx, account)
}
