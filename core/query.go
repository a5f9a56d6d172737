package core

import (
	"math/big"

	"tokenledger/core/state"
	"tokenledger/core/types"
)

// Read-only queries. All of them take the read lock and observe committed
// state only; none of them mutates anything, including expired allowances,
// which are simply reported as zero until an approval overwrites them.

// Name returns the token name.
func (l *Ledger) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meta.Name
}

// Symbol returns the token ticker symbol.
func (l *Ledger) Symbol() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meta.Symbol
}

// Decimals returns the number of decimal places of the token unit.
func (l *Ledger) Decimals() uint8 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meta.Decimals
}

// Fee returns the configured transfer fee.
func (l *Ledger) Fee() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.meta.Fee)
}

// MintingAccount returns the account authorized to mint; transfers to it are
// not special-cased, minting and burning are explicit operations.
func (l *Ledger) MintingAccount() types.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.minting.Copy()
}

// MetadataEntry is one key/value pair of the token metadata listing.
type MetadataEntry struct {
	Key   string
	Value types.Value
}

// Metadata lists the token metadata under its conventional namespaced keys.
func (l *Ledger) Metadata() []MetadataEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return []MetadataEntry{
		{Key: "icrc1:name", Value: types.TextValue(l.meta.Name)},
		{Key: "icrc1:symbol", Value: types.TextValue(l.meta.Symbol)},
		{Key: "icrc1:decimals", Value: types.Nat64Value(uint64(l.meta.Decimals))},
		{Key: "icrc1:fee", Value: types.NatValue(l.meta.Fee)},
	}
}

// TotalSupply returns the circulating supply: minted minus burned minus
// burned fees.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	supply, err := l.state.Supply()
	if err != nil {
		return nil, err
	}
	return supply.Circulating(), nil
}

// Supply returns the full supply counters.
func (l *Ledger) Supply() (state.Supply, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Supply()
}

// BalanceOf returns the balance of the account; unknown accounts hold zero.
func (l *Ledger) BalanceOf(account types.Account) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Balance(account.Normalize())
}

// AllowanceOf returns the live allowance from owner to spender. Expired or
// absent grants read as zero with no expiry.
func (l *Ledger) AllowanceOf(owner, spender types.Account) (state.Allowance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Allowance(owner.Normalize(), spender.Normalize(), l.now())
}

// LogLength returns the total number of blocks ever appended, including
// archived ones.
func (l *Ledger) LogLength() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log.Length()
}

// Block returns a single block from primary storage.
func (l *Ledger) Block(index uint64) (*types.Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log.Block(index)
}

// GetBlocks serves a page of the transaction log. Blocks held locally are
// returned inline; ranges that have been migrated come back as archive
// pointers the client follows itself.
func (l *Ledger) GetBlocks(start, length uint64) (*GetBlocksResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log.GetBlocks(start, length, l.params.MaxPageSize)
}
