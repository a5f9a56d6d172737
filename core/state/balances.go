package state

import (
	"fmt"
	"math/big"

	"tokenledger/core/types"
)

func balanceKey(acct types.Account) []byte {
	return prefixedKey(balancePrefix, acct.StateKey())
}

// Balance returns the current balance for the provided account. Missing
// entries default to zero.
func (m *Manager) Balance(acct types.Account) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := m.KVGet(balanceKey(acct), amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}

// setBalance persists the balance, removing the entry when it reaches zero so
// untouched accounts and emptied accounts are indistinguishable.
func (m *Manager) setBalance(acct types.Account, amount *big.Int) error {
	if amount.Sign() == 0 {
		return m.KVDelete(balanceKey(acct))
	}
	return m.KVPut(balanceKey(acct), amount)
}

// Credit adds amount to the account balance.
func (m *Manager) Credit(acct types.Account, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: credit amount must be non-negative")
	}
	balance, err := m.Balance(acct)
	if err != nil {
		return err
	}
	return m.setBalance(acct, balance.Add(balance, amount))
}

// Debit removes amount from the account balance. The balance invariant is
// enforced here as a backstop: callers validate sufficiency before applying.
func (m *Manager) Debit(acct types.Account, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: debit amount must be non-negative")
	}
	balance, err := m.Balance(acct)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("state: debit of %s exceeds balance %s for %s", amount, balance, acct)
	}
	return m.setBalance(acct, balance.Sub(balance, amount))
}
