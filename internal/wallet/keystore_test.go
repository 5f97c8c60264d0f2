package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChain struct {
	mu sync.Mutex
	id *big.Int
}

func (c *stubChain) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.id), nil
}

func (c *stubChain) set(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = big.NewInt(id)
}

func newTestProvider(t *testing.T, poll time.Duration) (*KeystoreProvider, *keystore.KeyStore, *stubChain) {
	t.Helper()
	ks := keystore.NewKeyStore(t.TempDir(), keystore.LightScryptN, keystore.LightScryptP)
	chain := &stubChain{id: big.NewInt(11155111)}
	p := newKeystoreProvider(ks, chain, poll, nil)
	t.Cleanup(p.Close)
	return p, ks, chain
}

func TestRequestAccountsUnlocksFirstKey(t *testing.T) {
	p, ks, _ := newTestProvider(t, time.Hour)
	acc, err := ks.NewAccount("secret")
	require.NoError(t, err)

	p.SetApprover(ApproverFunc(func(ctx context.Context, account string) (string, error) {
		assert.Equal(t, acc.Address.Hex(), account)
		return "secret", nil
	}))

	listed, err := p.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)

	got, err := p.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{acc.Address.Hex()}, got)

	listed, err = p.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, listed)

	signer, err := p.Signer(context.Background(), acc.Address.Hex())
	require.NoError(t, err)
	assert.Equal(t, acc.Address, signer.Address())

	opts, err := signer.TransactOpts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, acc.Address, opts.From)
}

func TestRequestAccountsRejected(t *testing.T) {
	p, ks, _ := newTestProvider(t, time.Hour)
	_, err := ks.NewAccount("secret")
	require.NoError(t, err)

	p.SetApprover(ApproverFunc(func(ctx context.Context, account string) (string, error) {
		return "", errors.New("user closed the prompt")
	}))
	_, err = p.RequestAccounts(context.Background())
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "user closed the prompt")

	p.SetApprover(ApproverFunc(func(ctx context.Context, account string) (string, error) {
		return "wrong", nil
	}))
	_, err = p.RequestAccounts(context.Background())
	require.ErrorIs(t, err, ErrRejected)
}

func TestRequestAccountsEmptyKeystore(t *testing.T) {
	p, _, _ := newTestProvider(t, time.Hour)
	got, err := p.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSignerForUnknownAccount(t *testing.T) {
	p, _, _ := newTestProvider(t, time.Hour)
	_, err := p.Signer(context.Background(), "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestDisconnectRelocksQuietly(t *testing.T) {
	p, ks, _ := newTestProvider(t, time.Hour)
	_, err := ks.NewAccount("secret")
	require.NoError(t, err)
	p.SetApprover(ApproverFunc(func(ctx context.Context, account string) (string, error) {
		return "secret", nil
	}))
	_, err = p.RequestAccounts(context.Background())
	require.NoError(t, err)

	events := make(chan Event, 1)
	sub := p.Subscribe(events)
	defer sub.Unsubscribe()

	require.NoError(t, p.Disconnect(context.Background()))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %T after disconnect", ev)
	case <-time.After(50 * time.Millisecond):
	}

	listed, err := p.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestChainSwitchPublishesChainChanged(t *testing.T) {
	p, _, chain := newTestProvider(t, 10*time.Millisecond)

	events := make(chan Event, 4)
	sub := p.Subscribe(events)
	defer sub.Unsubscribe()

	_, err := p.ChainID(context.Background())
	require.NoError(t, err)
	chain.set(1)

	select {
	case ev := <-events:
		changed, ok := ev.(ChainChanged)
		require.True(t, ok)
		assert.Equal(t, int64(1), changed.ChainID.Int64())
	case <-time.After(2 * time.Second):
		t.Fatal("no chainChanged event")
	}
}
