// Package session holds the controller that mediates between the wallet, the
// MindCoin contract and the OmniMind Core service on behalf of the display layer.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Rorical/OmniMind/internal/omnicore"
	"github.com/Rorical/OmniMind/internal/token"
	"github.com/Rorical/OmniMind/internal/wallet"
)

const maxErrorLength = 100

var (
	ErrNotConnected     = errors.New("wallet not connected")
	ErrNoAccounts       = errors.New("no accounts found")
	ErrInvalidAccount   = errors.New("invalid account format")
	ErrWrongNetwork     = errors.New("wrong network")
	ErrInvalidRecipient = errors.New("invalid recipient address")
	ErrTransferInFlight = errors.New("a transfer is already in progress")
	ErrEmptyCommand     = errors.New("empty command")
	ErrCommandInFlight  = errors.New("a command is already in flight")
	ErrCommandFailed    = errors.New("command failed")
)

// Token is the contract surface the controller uses.
type Token interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Transfer(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// TokenBinder produces the contract binding used with a given signer.
type TokenBinder func(signer wallet.Signer) (Token, error)

// CommandSender dispatches raw commands to the Core service.
type CommandSender interface {
	Send(ctx context.Context, raw string) (omnicore.Result, error)
}

type Options struct {
	// Provider may be nil when no wallet is configured.
	Provider        wallet.Provider
	BindToken       TokenBinder
	Core            CommandSender
	RequiredChainID *big.Int
	Symbol          string
	Logger          *slog.Logger
}

// Outcome is what an operation produced. Err is informational; the same
// failure is already reflected in the controller's state.
type Outcome struct {
	Message string
	Cleared bool
	Err     error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

type Controller struct {
	provider wallet.Provider
	bind     TokenBinder
	core     CommandSender
	required *big.Int
	symbol   string
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	listeners []func(Snapshot)
}

func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	required := opts.RequiredChainID
	if required == nil {
		required = new(big.Int).SetUint64(11155111)
	}
	symbol := opts.Symbol
	if symbol == "" {
		symbol = "MIND"
	}
	return &Controller{
		provider: opts.Provider,
		bind:     opts.BindToken,
		core:     opts.Core,
		required: required,
		symbol:   symbol,
		logger:   logger,
		state:    initialState(),
	}
}

// OnChange registers fn to receive a snapshot after every state change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot(c.provider != nil, c.symbol)
}

func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.state.snapshot(c.provider != nil, c.symbol)
	listeners := append([]func(Snapshot){}, c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (c *Controller) feedback(msg string) {
	c.update(func(s *State) { s.Feedback = msg })
}

func (c *Controller) fail(msg string, err error) Outcome {
	c.feedback(msg)
	return Outcome{Message: msg, Err: err}
}

// Init adopts accounts the wallet already authorized, mirroring a page load.
func (c *Controller) Init(ctx context.Context) Outcome {
	if c.provider == nil {
		return c.fail("No Ethereum wallet is configured. Set rpc_url and keystore_dir to use this dashboard.", wallet.ErrUnavailable)
	}

	accounts, err := c.provider.ListAccounts(ctx)
	if err != nil {
		c.logger.Warn("could not list existing accounts", "err", err)
		return Outcome{Err: err}
	}
	if len(accounts) == 0 {
		return Outcome{}
	}
	return c.OnAccountsChanged(ctx, accounts)
}

// Connect asks the wallet for account access.
func (c *Controller) Connect(ctx context.Context) Outcome {
	if c.provider == nil {
		return c.fail("Wallet not available.", wallet.ErrUnavailable)
	}

	c.feedback("Connecting to wallet...")
	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		c.logger.Warn("connect wallet", "err", err)
		return c.fail("Error connecting wallet: "+err.Error(), err)
	}
	if len(accounts) == 0 {
		return c.fail("No accounts found. Please ensure your wallet is set up.", ErrNoAccounts)
	}
	return c.OnAccountsChanged(ctx, accounts)
}

// Disconnect revokes wallet access and clears the session.
func (c *Controller) Disconnect(ctx context.Context) Outcome {
	if c.provider == nil {
		return c.fail("Wallet not available.", wallet.ErrUnavailable)
	}
	if err := c.provider.Disconnect(ctx); err != nil {
		c.logger.Warn("disconnect wallet", "err", err)
	}
	return c.OnAccountsChanged(ctx, []any{})
}

// OnAccountsChanged handles the wallet's account list notification.
func (c *Controller) OnAccountsChanged(ctx context.Context, accounts []any) Outcome {
	if c.provider == nil {
		return c.fail("Provider not available.", wallet.ErrUnavailable)
	}

	if len(accounts) == 0 {
		msg := "Wallet disconnected. Please connect your wallet."
		c.update(func(s *State) {
			s.Wallet = nil
			s.contract = nil
			s.Token = resetTokenView()
			s.Feedback = msg
		})
		return Outcome{Message: msg}
	}

	account, ok := accounts[0].(string)
	if !ok || !wallet.IsAddress(account) {
		c.logger.Error("received malformed account", "account", fmt.Sprintf("%v", accounts[0]))
		return c.fail("Error: Received invalid account format.", ErrInvalidAccount)
	}

	c.mu.Lock()
	var signer wallet.Signer
	if c.state.Wallet != nil && strings.EqualFold(c.state.Wallet.Account, account) {
		signer = c.state.Wallet.signer
	}
	c.mu.Unlock()

	if signer == nil {
		var err error
		signer, err = c.provider.Signer(ctx, account)
		if err != nil {
			return c.fail("Error: could not obtain a signer: "+err.Error(), err)
		}
	}

	if c.bind == nil {
		return c.fail("Error: no token contract is configured.", ErrNotConnected)
	}
	contract, err := c.bind(signer)
	if err != nil {
		return c.fail("Error: could not bind the token contract: "+err.Error(), err)
	}

	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		c.logger.Warn("read chain id", "err", err)
	}

	c.update(func(s *State) {
		s.Wallet = &WalletSession{Account: account, ChainID: chainID, signer: signer}
		s.contract = contract
		s.Feedback = "Wallet connected: " + wallet.ShortAddress(account)
	})
	c.logger.Info("wallet connected", "account", account)

	return c.RefreshBalance(ctx)
}

// OnChainChanged drops all state and starts over, since every binding may be stale.
func (c *Controller) OnChainChanged(ctx context.Context) Outcome {
	c.logger.Info("network changed, resetting session")
	c.update(func(s *State) {
		*s = initialState()
		s.Feedback = "Network changed. Reloading..."
	})
	return c.Init(ctx)
}

// RefreshBalance re-reads the connected account's token balance.
func (c *Controller) RefreshBalance(ctx context.Context) Outcome {
	c.mu.Lock()
	session, contract := c.state.Wallet, c.state.contract
	c.mu.Unlock()
	if session == nil || contract == nil {
		return c.fail("Connect your wallet first.", ErrNotConnected)
	}

	if ok, outcome := c.checkNetwork(ctx, session); !ok {
		return outcome
	}

	c.feedback(fmt.Sprintf("Fetching %s balance...", c.symbol))
	balance, err := contract.BalanceOf(ctx, common.HexToAddress(session.Account))
	if err != nil {
		c.logger.Error("fetch balance", "account", session.Account, "err", err)
		msg := fmt.Sprintf("Error fetching %s balance: %s", c.symbol, err.Error())
		c.applyIfCurrent(session, func(s *State) {
			s.Token = TokenView{Balance: ErrorBalance, Status: BalanceError, Reason: err.Error()}
			s.Feedback = msg
		})
		return Outcome{Message: msg, Err: err}
	}

	msg := fmt.Sprintf("%s balance updated.", c.symbol)
	c.applyIfCurrent(session, func(s *State) {
		s.Token = TokenView{Balance: token.FormatUnits(balance), Status: BalanceOK}
		s.Feedback = msg
	})
	return Outcome{Message: msg}
}

// checkNetwork marks the balance invalid unless the wallet is on the required chain.
func (c *Controller) checkNetwork(ctx context.Context, session *WalletSession) (bool, Outcome) {
	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		msg := "Error reading network: " + err.Error()
		c.applyIfCurrent(session, func(s *State) {
			s.Token = TokenView{Balance: ErrorBalance, Status: BalanceError, Reason: err.Error()}
			s.Feedback = msg
		})
		return false, Outcome{Message: msg, Err: err}
	}

	if chainID.Cmp(c.required) != 0 {
		msg := fmt.Sprintf("Please connect to %s.", networkName(c.required))
		c.applyIfCurrent(session, func(s *State) {
			s.Wallet.ChainID = chainID
			s.Token = TokenView{Balance: WrongNetworkBalance, Status: BalanceWrongNetwork, Reason: ErrWrongNetwork.Error()}
			s.Feedback = msg
		})
		return false, Outcome{Message: msg, Err: ErrWrongNetwork}
	}
	return true, Outcome{}
}

// applyIfCurrent drops results that resolve after the session they belong to is gone.
func (c *Controller) applyIfCurrent(session *WalletSession, fn func(s *State)) {
	c.update(func(s *State) {
		if s.Wallet != session {
			return
		}
		fn(s)
	})
}

// Transfer sends amount tokens to the recipient and waits for confirmation.
func (c *Controller) Transfer(ctx context.Context, to, amount string) Outcome {
	c.mu.Lock()
	session, contract := c.state.Wallet, c.state.contract
	c.mu.Unlock()
	if session == nil || contract == nil {
		return c.fail("Connect your wallet first.", ErrNotConnected)
	}

	to = strings.TrimSpace(to)
	if !wallet.IsAddress(to) {
		return c.fail("Invalid recipient address.", ErrInvalidRecipient)
	}
	units, err := token.ParseUnits(amount)
	if err != nil {
		return c.fail(amountMessage(err), err)
	}

	if ok, outcome := c.checkNetwork(ctx, session); !ok {
		return outcome
	}

	c.mu.Lock()
	if c.state.Transferring {
		c.mu.Unlock()
		return c.fail("A transfer is already in progress.", ErrTransferInFlight)
	}
	c.state.Transferring = true
	c.mu.Unlock()

	display := token.FormatUnits(units)
	c.update(func(s *State) {
		s.Feedback = fmt.Sprintf("Sending %s %s to %s...", display, c.symbol, wallet.ShortAddress(to))
	})
	defer c.update(func(s *State) { s.Transferring = false })

	opts, err := session.signer.TransactOpts(ctx)
	if err != nil {
		return c.transferFailed(err)
	}
	tx, err := contract.Transfer(opts, common.HexToAddress(to), units)
	if err != nil {
		return c.transferFailed(err)
	}

	c.logger.Info("transfer submitted", "tx", tx.Hash().Hex(), "to", to, "amount", display)
	c.feedback(fmt.Sprintf("Transaction %s submitted. Waiting for confirmation...", shortHash(tx.Hash())))

	if _, err := contract.WaitMined(ctx, tx); err != nil {
		return c.transferFailed(err)
	}

	c.RefreshBalance(ctx)
	msg := fmt.Sprintf("Transfer of %s %s confirmed.", display, c.symbol)
	c.feedback(msg)
	return Outcome{Message: msg, Cleared: true}
}

func (c *Controller) transferFailed(err error) Outcome {
	c.logger.Error("transfer failed", "err", err)
	return c.fail("Transfer failed: "+rejectionText(err), err)
}

// SendCommand relays raw to the Core service. A second dispatch while one is
// in flight is rejected.
func (c *Controller) SendCommand(ctx context.Context, raw string) Outcome {
	if strings.TrimSpace(raw) == "" {
		return c.fail("Please enter a command.", ErrEmptyCommand)
	}

	c.mu.Lock()
	if c.state.Pending != nil && c.state.Pending.InFlight {
		c.mu.Unlock()
		return Outcome{Message: "Please wait for the current command to finish.", Err: ErrCommandInFlight}
	}
	c.state.Pending = &PendingCommand{Raw: raw, InFlight: true}
	c.mu.Unlock()

	c.update(func(s *State) {
		s.Phase = CommandSending
		s.Result = nil
		s.Feedback = "Sending command to OmniMind Core..."
	})

	var (
		result omnicore.Result
		err    error
	)
	if c.core == nil {
		err = omnicore.ErrUnreachable
	} else {
		result, err = c.core.Send(ctx, raw)
	}

	if err != nil {
		c.logger.Warn("command dispatch failed", "err", err)
		failure := omnicore.Failure(err)
		msg := "Error sending command: " + err.Error()
		c.finishCommand(failure, CommandFailed, msg)
		return Outcome{Message: msg, Err: err}
	}

	if !result.Succeeded() {
		msg := "OmniMind Core error: " + result.Message
		c.finishCommand(result, CommandFailed, msg)
		return Outcome{Message: msg, Err: fmt.Errorf("%w: %s", ErrCommandFailed, result.Message)}
	}

	msg := "Command processed: " + result.Message
	c.finishCommand(result, CommandSucceeded, msg)
	return Outcome{Message: msg, Cleared: true}
}

func (c *Controller) finishCommand(result omnicore.Result, phase CommandPhase, msg string) {
	c.update(func(s *State) {
		if s.Pending != nil {
			s.Pending.InFlight = false
		}
		s.Result = &result
		s.Phase = phase
		s.Feedback = msg
	})
}

func amountMessage(err error) string {
	switch {
	case errors.Is(err, token.ErrTooManyDecimals):
		return "Amount cannot have more than 18 decimal places."
	case errors.Is(err, token.ErrAmountTooLarge):
		return "Amount is too large."
	default:
		return "Amount must be a positive number."
	}
}

// rejectionText prefers a wallet- or contract-supplied reason over the raw error.
func rejectionText(err error) string {
	if reason, ok := token.RejectionReason(err); ok {
		return reason
	}
	if errors.Is(err, wallet.ErrRejected) {
		return err.Error()
	}
	msg := err.Error()
	if len(msg) > maxErrorLength {
		return msg[:maxErrorLength] + "..."
	}
	return msg
}

func networkName(id *big.Int) string {
	if id.Cmp(big.NewInt(11155111)) == 0 {
		return "the Sepolia test network"
	}
	return "chain " + id.String()
}

func shortHash(h common.Hash) string {
	s := h.Hex()
	return s[:10] + "..."
}
