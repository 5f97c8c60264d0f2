// Package token binds the MindCoin ERC-20 contract and converts between its
// smallest unit and human decimals.
package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const erc20ABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

var ErrTransferReverted = errors.New("transaction reverted")

var parsedABI = mustParseABI(erc20ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("token: bad ERC-20 ABI: %v", err))
	}
	return parsed
}

// Backend is what an Ethereum client offers for calls, sends and receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// ERC20 is a minimal binding over balanceOf and transfer.
type ERC20 struct {
	address  common.Address
	contract *bind.BoundContract
	waiter   bind.DeployBackend
}

// BindERC20 binds the token at address through a full client such as *ethclient.Client.
func BindERC20(address common.Address, backend Backend) *ERC20 {
	return NewERC20(address, backend, backend, backend)
}

// NewERC20 binds with separate call, send and receipt backends. transactor and
// waiter may be nil for read-only use.
func NewERC20(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, waiter bind.DeployBackend) *ERC20 {
	return &ERC20{
		address:  address,
		contract: bind.NewBoundContract(address, parsedABI, caller, transactor, nil),
		waiter:   waiter,
	}
}

func (t *ERC20) Address() common.Address {
	return t.address
}

func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner); err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("balanceOf: empty result")
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf: unexpected result type %T", out[0])
	}
	return balance, nil
}

// Transfer signs and submits transfer(to, amount). It does not wait for inclusion.
func (t *ERC20) Transfer(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error) {
	tx, err := t.contract.Transact(opts, "transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	return tx, nil
}

// WaitMined blocks until tx is included and fails if it reverted.
func (t *ERC20) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if t.waiter == nil {
		return nil, errors.New("no receipt backend configured")
	}
	receipt, err := bind.WaitMined(ctx, t.waiter, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTransferReverted, tx.Hash().Hex())
	}
	return receipt, nil
}
