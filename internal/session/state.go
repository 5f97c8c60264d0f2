package session

import (
	"math/big"

	"github.com/Rorical/OmniMind/internal/omnicore"
	"github.com/Rorical/OmniMind/internal/wallet"
)

const (
	ZeroBalance         = "0"
	WrongNetworkBalance = "N/A (Wrong Network)"
	ErrorBalance        = "Error"
)

type BalanceStatus int

const (
	// BalanceUnset is the reset state: no account, or nothing fetched yet.
	BalanceUnset BalanceStatus = iota
	BalanceOK
	BalanceWrongNetwork
	BalanceError
)

func (s BalanceStatus) String() string {
	switch s {
	case BalanceOK:
		return "ok"
	case BalanceWrongNetwork:
		return "wrong network"
	case BalanceError:
		return "error"
	default:
		return "unset"
	}
}

// CommandPhase tracks a dispatch: Idle -> Sending -> Succeeded | Failed.
type CommandPhase int

const (
	CommandIdle CommandPhase = iota
	CommandSending
	CommandSucceeded
	CommandFailed
)

func (p CommandPhase) String() string {
	switch p {
	case CommandSending:
		return "sending"
	case CommandSucceeded:
		return "success"
	case CommandFailed:
		return "failed"
	default:
		return "idle"
	}
}

// WalletSession is the connected account. At most one exists at a time.
type WalletSession struct {
	Account string
	ChainID *big.Int
	signer  wallet.Signer
}

// TokenView is the cached balance display for the connected account.
type TokenView struct {
	Balance string
	Status  BalanceStatus
	Reason  string
}

// Valid reports whether Balance is a real figure for the right network.
func (v TokenView) Valid() bool {
	return v.Status == BalanceOK
}

func resetTokenView() TokenView {
	return TokenView{Balance: ZeroBalance, Status: BalanceUnset}
}

type PendingCommand struct {
	Raw      string
	InFlight bool
}

// State is everything the controller knows. It is only touched under Controller.mu.
type State struct {
	Wallet       *WalletSession
	Token        TokenView
	Pending      *PendingCommand
	Phase        CommandPhase
	Result       *omnicore.Result
	Feedback     string
	Transferring bool

	contract Token
}

func initialState() State {
	return State{Token: resetTokenView()}
}

// Snapshot is an immutable copy of State for the display layer.
type Snapshot struct {
	WalletAvailable bool
	Connected       bool
	Account         string
	ChainID         string
	Symbol          string
	Token           TokenView
	Phase           CommandPhase
	PendingCommand  string
	Result          *omnicore.Result
	Feedback        string
	Transferring    bool
}

func (s *State) snapshot(walletAvailable bool, symbol string) Snapshot {
	snap := Snapshot{
		WalletAvailable: walletAvailable,
		Symbol:          symbol,
		Token:           s.Token,
		Phase:           s.Phase,
		Feedback:        s.Feedback,
		Transferring:    s.Transferring,
	}
	if s.Wallet != nil {
		snap.Connected = true
		snap.Account = s.Wallet.Account
		if s.Wallet.ChainID != nil {
			snap.ChainID = s.Wallet.ChainID.String()
		}
	}
	if s.Pending != nil {
		snap.PendingCommand = s.Pending.Raw
	}
	if s.Result != nil {
		r := *s.Result
		if r.Data != nil {
			r.Data = append([]byte(nil), r.Data...)
		}
		snap.Result = &r
	}
	return snap
}
