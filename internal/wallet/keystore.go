package wallet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/event"
)

// ChainReader is the slice of an Ethereum client the provider needs.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

type KeystoreConfig struct {
	RPCURL       string
	KeystoreDir  string
	PollInterval time.Duration
	Logger       *slog.Logger
}

// KeystoreProvider serves accounts from a local go-ethereum keystore and reads
// the network from a JSON-RPC endpoint. Unlocking an account stands in for the
// user granting access to it.
type KeystoreProvider struct {
	ks     *keystore.KeyStore
	chain  ChainReader
	client *ethclient.Client
	closer func()
	logger *slog.Logger
	poll   time.Duration

	mu         sync.Mutex
	approver   Approver
	authorized []accounts.Account
	chainID    *big.Int

	feed   event.FeedOf[Event]
	cancel context.CancelFunc
	done   chan struct{}
}

var _ Provider = (*KeystoreProvider)(nil)

// NewKeystoreProvider dials the RPC endpoint, opens the keystore and starts
// watching for dropped keys and network switches.
func NewKeystoreProvider(ctx context.Context, cfg KeystoreConfig) (*KeystoreProvider, error) {
	if cfg.RPCURL == "" || cfg.KeystoreDir == "" {
		return nil, ErrUnavailable
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}

	ks := keystore.NewKeyStore(cfg.KeystoreDir, keystore.StandardScryptN, keystore.StandardScryptP)
	p := newKeystoreProvider(ks, client, cfg.PollInterval, cfg.Logger)
	p.client = client
	p.closer = client.Close
	return p, nil
}

// Client is the RPC connection shared with contract bindings.
func (p *KeystoreProvider) Client() *ethclient.Client {
	return p.client
}

func newKeystoreProvider(ks *keystore.KeyStore, chain ChainReader, poll time.Duration, logger *slog.Logger) *KeystoreProvider {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if poll <= 0 {
		poll = 4 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &KeystoreProvider{
		ks:     ks,
		chain:  chain,
		logger: logger,
		poll:   poll,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go p.watch(ctx)
	return p
}

// SetApprover installs the prompt used by RequestAccounts.
func (p *KeystoreProvider) SetApprover(approver Approver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.approver = approver
}

func (p *KeystoreProvider) ListAccounts(ctx context.Context) ([]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return addressList(p.authorized), nil
}

func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]any, error) {
	p.mu.Lock()
	if len(p.authorized) > 0 {
		list := addressList(p.authorized)
		p.mu.Unlock()
		return list, nil
	}
	approver := p.approver
	p.mu.Unlock()

	available := p.ks.Accounts()
	if len(available) == 0 {
		return []any{}, nil
	}
	if approver == nil {
		return nil, fmt.Errorf("%w: no approver configured", ErrUnavailable)
	}

	account := available[0]
	passphrase, err := approver.ApproveAccount(ctx, account.Address.Hex())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	if err := p.ks.Unlock(account, passphrase); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	p.logger.Info("account unlocked", "account", account.Address.Hex())

	p.mu.Lock()
	defer p.mu.Unlock()
	p.authorized = append(p.authorized, account)
	return addressList(p.authorized), nil
}

func (p *KeystoreProvider) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := p.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read chain id: %w", err)
	}
	p.mu.Lock()
	if p.chainID == nil {
		p.chainID = new(big.Int).Set(id)
	}
	p.mu.Unlock()
	return id, nil
}

func (p *KeystoreProvider) Signer(ctx context.Context, account string) (Signer, error) {
	addr := common.HexToAddress(account)

	p.mu.Lock()
	var found *accounts.Account
	for i := range p.authorized {
		if p.authorized[i].Address == addr {
			acc := p.authorized[i]
			found = &acc
			break
		}
	}
	p.mu.Unlock()
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, account)
	}

	chainID, err := p.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return &keystoreSigner{ks: p.ks, account: *found, chainID: chainID}, nil
}

// Disconnect relocks every authorized key. Nothing is published: the caller
// asked for the disconnect and tears its session down itself.
func (p *KeystoreProvider) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	for _, acc := range p.authorized {
		if err := p.ks.Lock(acc.Address); err != nil {
			p.logger.Warn("lock account", "account", acc.Address.Hex(), "err", err)
		}
	}
	p.authorized = nil
	p.mu.Unlock()
	return nil
}

func (p *KeystoreProvider) Subscribe(ch chan<- Event) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Close stops the watcher and releases the RPC connection.
func (p *KeystoreProvider) Close() {
	p.cancel()
	<-p.done
	if p.closer != nil {
		p.closer()
	}
}

func (p *KeystoreProvider) watch(ctx context.Context) {
	defer close(p.done)

	walletEvents := make(chan accounts.WalletEvent, 8)
	sub := p.ks.Subscribe(walletEvents)
	defer sub.Unsubscribe()

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-walletEvents:
			if ev.Kind == accounts.WalletDropped {
				p.dropAccounts(ev.Wallet.Accounts())
			}
		case <-ticker.C:
			p.pollChain(ctx)
		}
	}
}

func (p *KeystoreProvider) dropAccounts(dropped []accounts.Account) {
	p.mu.Lock()
	remaining := p.authorized[:0:0]
	for _, acc := range p.authorized {
		gone := false
		for _, d := range dropped {
			if d.Address == acc.Address {
				gone = true
				break
			}
		}
		if !gone {
			remaining = append(remaining, acc)
		}
	}
	changed := len(remaining) != len(p.authorized)
	p.authorized = remaining
	list := addressList(remaining)
	p.mu.Unlock()

	if changed {
		p.logger.Info("authorized key removed from keystore", "remaining", len(list))
		p.feed.Send(AccountsChanged{Accounts: list})
	}
}

func (p *KeystoreProvider) pollChain(ctx context.Context) {
	id, err := p.chain.ChainID(ctx)
	if err != nil {
		p.logger.Debug("poll chain id", "err", err)
		return
	}

	p.mu.Lock()
	changed := p.chainID != nil && p.chainID.Cmp(id) != 0
	p.chainID = new(big.Int).Set(id)
	p.mu.Unlock()

	if changed {
		p.logger.Info("network changed", "chain_id", id.String())
		p.feed.Send(ChainChanged{ChainID: id})
	}
}

func addressList(accs []accounts.Account) []any {
	list := make([]any, 0, len(accs))
	for _, acc := range accs {
		list = append(list, acc.Address.Hex())
	}
	return list
}

type keystoreSigner struct {
	ks      *keystore.KeyStore
	account accounts.Account
	chainID *big.Int
}

func (s *keystoreSigner) Address() common.Address {
	return s.account.Address
}

func (s *keystoreSigner) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyStoreTransactorWithChainID(s.ks, s.account, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}
