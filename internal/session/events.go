package session

import (
	"context"

	"github.com/Rorical/OmniMind/internal/wallet"
)

// Run subscribes to the wallet's notifications and applies them until ctx
// ends. The subscription is released on return.
func (c *Controller) Run(ctx context.Context) error {
	if c.provider == nil {
		<-ctx.Done()
		return nil
	}

	events := make(chan wallet.Event, 16)
	sub := c.provider.Subscribe(events)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case ev := <-events:
			c.handleWalletEvent(ctx, ev)
		}
	}
}

func (c *Controller) handleWalletEvent(ctx context.Context, ev wallet.Event) {
	switch e := ev.(type) {
	case wallet.AccountsChanged:
		c.OnAccountsChanged(ctx, e.Accounts)
	case wallet.ChainChanged:
		c.logger.Debug("chain changed event", "chain_id", e.ChainID)
		c.OnChainChanged(ctx)
	}
}
