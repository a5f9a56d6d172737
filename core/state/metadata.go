package state

import (
	"fmt"
	"math/big"
	"strings"

	"tokenledger/core/types"
)

// TokenMetadata is the persisted token description: once written at first
// boot it is the authoritative copy, stable across restarts even if the
// configuration file changes afterwards.
type TokenMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
	Fee      *big.Int
}

type storedTokenMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
	Fee      *big.Int
}

// TokenMetadata retrieves the persisted token description, nil when the
// ledger has never been initialised.
func (m *Manager) TokenMetadata() (*TokenMetadata, error) {
	var stored storedTokenMetadata
	ok, err := m.KVGet(metadataKey, &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	meta := &TokenMetadata{
		Name:     stored.Name,
		Symbol:   stored.Symbol,
		Decimals: stored.Decimals,
		Fee:      big.NewInt(0),
	}
	if stored.Fee != nil {
		meta.Fee = stored.Fee
	}
	return meta, nil
}

// SetTokenMetadata persists the token description.
func (m *Manager) SetTokenMetadata(meta *TokenMetadata) error {
	if meta == nil {
		return fmt.Errorf("state: nil token metadata")
	}
	if strings.TrimSpace(meta.Name) == "" {
		return fmt.Errorf("state: token name must not be empty")
	}
	if strings.TrimSpace(meta.Symbol) == "" {
		return fmt.Errorf("state: token symbol must not be empty")
	}
	if meta.Fee == nil || meta.Fee.Sign() < 0 {
		return fmt.Errorf("state: token fee must be non-negative")
	}
	stored := storedTokenMetadata{
		Name:     meta.Name,
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Fee:      meta.Fee,
	}
	return m.KVPut(metadataKey, &stored)
}

type storedMintingAccount struct {
	Owner      []byte
	Subaccount []byte
}

// MintingAccount retrieves the persisted minting account, nil when none has
// been written yet. Like the token metadata it is persisted at first boot and
// the stored copy is authoritative afterwards; unlike the metadata it can be
// rotated at runtime.
func (m *Manager) MintingAccount() (*types.Account, error) {
	var stored storedMintingAccount
	ok, err := m.KVGet(mintingKey, &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if len(stored.Owner) == 0 {
		return nil, fmt.Errorf("state: stored minting account has no owner")
	}
	if len(stored.Subaccount) == 0 {
		account := types.NewAccount(stored.Owner, nil)
		return &account, nil
	}
	if len(stored.Subaccount) != types.SubaccountLength {
		return nil, fmt.Errorf("state: stored minting account subaccount is %d bytes, want %d", len(stored.Subaccount), types.SubaccountLength)
	}
	var sub [types.SubaccountLength]byte
	copy(sub[:], stored.Subaccount)
	account := types.NewAccount(stored.Owner, &sub)
	return &account, nil
}

// SetMintingAccount persists the minting account.
func (m *Manager) SetMintingAccount(account types.Account) error {
	account = account.Normalize()
	if len(account.Owner) == 0 {
		return fmt.Errorf("state: minting account must have an owner")
	}
	stored := storedMintingAccount{Owner: append([]byte(nil), account.Owner...)}
	if account.Subaccount != nil {
		stored.Subaccount = append([]byte(nil), account.Subaccount[:]...)
	}
	return m.KVPut(mintingKey, &stored)
}
