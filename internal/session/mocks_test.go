package session

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/mock"

	"github.com/Rorical/OmniMind/internal/omnicore"
	"github.com/Rorical/OmniMind/internal/wallet"
)

type mockProvider struct {
	mock.Mock
	feed event.FeedOf[wallet.Event]
}

func (m *mockProvider) ListAccounts(ctx context.Context) ([]any, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]any)
	return accounts, args.Error(1)
}

func (m *mockProvider) RequestAccounts(ctx context.Context) ([]any, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]any)
	return accounts, args.Error(1)
}

func (m *mockProvider) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	id, _ := args.Get(0).(*big.Int)
	return id, args.Error(1)
}

func (m *mockProvider) Signer(ctx context.Context, account string) (wallet.Signer, error) {
	args := m.Called(ctx, account)
	signer, _ := args.Get(0).(wallet.Signer)
	return signer, args.Error(1)
}

func (m *mockProvider) Disconnect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockProvider) Subscribe(ch chan<- wallet.Event) event.Subscription {
	return m.feed.Subscribe(ch)
}

type mockToken struct {
	mock.Mock
}

func (m *mockToken) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	args := m.Called(ctx, owner)
	balance, _ := args.Get(0).(*big.Int)
	return balance, args.Error(1)
}

func (m *mockToken) Transfer(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, to, amount)
	tx, _ := args.Get(0).(*types.Transaction)
	return tx, args.Error(1)
}

func (m *mockToken) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	args := m.Called(ctx, tx)
	receipt, _ := args.Get(0).(*types.Receipt)
	return receipt, args.Error(1)
}

type mockCore struct {
	mock.Mock
}

func (m *mockCore) Send(ctx context.Context, raw string) (omnicore.Result, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(omnicore.Result), args.Error(1)
}

type stubSigner struct {
	addr common.Address
}

func (s stubSigner) Address() common.Address {
	return s.addr
}

func (s stubSigner) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: s.addr, Context: ctx}, nil
}
