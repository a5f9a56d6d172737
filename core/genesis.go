package core

import (
	"fmt"
	"math/big"

	"tokenledger/core/types"
)

// GenesisAllocation seeds an account with an initial balance when the ledger
// starts empty.
type GenesisAllocation struct {
	Account types.Account
	Amount  *big.Int
}

// ApplyGenesis mints the configured initial allocations. It is a no-op on a
// ledger that already holds blocks, so restarting a node with the same
// configuration never double-mints.
func (l *Ledger) ApplyGenesis(allocations []GenesisAllocation) error {
	if l.LogLength() > 0 {
		return nil
	}
	minter := l.MintingAccount()
	for _, alloc := range allocations {
		if _, err := l.Mint(minter.Owner, MintArgs{
			To:     alloc.Account,
			Amount: alloc.Amount,
		}); err != nil {
			return fmt.Errorf("genesis: mint to %s: %w", alloc.Account.String(), err)
		}
	}
	return nil
}
