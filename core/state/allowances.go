package state

import (
	"fmt"
	"math/big"

	"tokenledger/core/types"
)

// Allowance is a bounded, optionally time-limited grant for a spender to move
// funds from an owner account.
type Allowance struct {
	Amount    *big.Int
	ExpiresAt *uint64
}

// Copy returns a deep copy to avoid callers mutating shared pointers.
func (a Allowance) Copy() Allowance {
	out := Allowance{Amount: big.NewInt(0)}
	if a.Amount != nil {
		out.Amount = new(big.Int).Set(a.Amount)
	}
	if a.ExpiresAt != nil {
		expires := *a.ExpiresAt
		out.ExpiresAt = &expires
	}
	return out
}

// Expired reports whether the grant has lapsed relative to ledger time.
func (a Allowance) Expired(now uint64) bool {
	return a.ExpiresAt != nil && *a.ExpiresAt < now
}

type storedAllowance struct {
	Amount    *big.Int
	HasExpiry bool
	ExpiresAt uint64
}

func allowanceKey(owner, spender types.Account) []byte {
	ownerKey := owner.StateKey()
	spenderKey := spender.StateKey()
	suffix := make([]byte, 0, len(ownerKey)+len(spenderKey))
	suffix = append(suffix, ownerKey...)
	suffix = append(suffix, spenderKey...)
	return prefixedKey(allowancePrefix, suffix)
}

// Allowance returns the current grant from owner to spender. Missing entries
// and entries that expired before now read as a zero grant with no expiry;
// expired entries are not purged here so reads stay side-effect free.
func (m *Manager) Allowance(owner, spender types.Account, now uint64) (Allowance, error) {
	var stored storedAllowance
	ok, err := m.KVGet(allowanceKey(owner, spender), &stored)
	if err != nil {
		return Allowance{}, err
	}
	if !ok {
		return Allowance{Amount: big.NewInt(0)}, nil
	}
	allowance := allowanceFromStored(stored)
	if allowance.Expired(now) {
		return Allowance{Amount: big.NewInt(0)}, nil
	}
	return allowance, nil
}

// SetAllowance replaces the grant from owner to spender. A zero grant removes
// the entry.
func (m *Manager) SetAllowance(owner, spender types.Account, allowance Allowance) error {
	if allowance.Amount == nil || allowance.Amount.Sign() < 0 {
		return fmt.Errorf("state: allowance amount must be non-negative")
	}
	key := allowanceKey(owner, spender)
	if allowance.Amount.Sign() == 0 {
		return m.KVDelete(key)
	}
	stored := storedAllowance{Amount: allowance.Amount}
	if allowance.ExpiresAt != nil {
		stored.HasExpiry = true
		stored.ExpiresAt = *allowance.ExpiresAt
	}
	return m.KVPut(key, &stored)
}

// ConsumeAllowance deducts delta from the grant, preserving its expiry. The
// entry is removed once fully spent. Expired grants read as zero, so
// consuming against one fails the sufficiency check here as well.
func (m *Manager) ConsumeAllowance(owner, spender types.Account, delta *big.Int, now uint64) error {
	if delta == nil || delta.Sign() < 0 {
		return fmt.Errorf("state: allowance delta must be non-negative")
	}
	current, err := m.Allowance(owner, spender, now)
	if err != nil {
		return err
	}
	if current.Amount.Cmp(delta) < 0 {
		return fmt.Errorf("state: consuming %s exceeds allowance %s", delta, current.Amount)
	}
	remaining := new(big.Int).Sub(current.Amount, delta)
	return m.SetAllowance(owner, spender, Allowance{Amount: remaining, ExpiresAt: current.ExpiresAt})
}

func allowanceFromStored(stored storedAllowance) Allowance {
	allowance := Allowance{Amount: big.NewInt(0)}
	if stored.Amount != nil {
		allowance.Amount = stored.Amount
	}
	if stored.HasExpiry {
		expires := stored.ExpiresAt
		allowance.ExpiresAt = &expires
	}
	return allowance
}
