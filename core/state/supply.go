package state

import (
	"fmt"
	"math/big"
)

// Supply tracks the cumulative token flows that define circulating supply.
// Fees are burned, so circulating = minted - burned - feesBurned; the sum of
// all account balances must always equal that figure.
type Supply struct {
	Minted     *big.Int
	Burned     *big.Int
	FeesBurned *big.Int
}

// Circulating returns minted - burned - feesBurned.
func (s Supply) Circulating() *big.Int {
	total := new(big.Int).Set(s.Minted)
	total.Sub(total, s.Burned)
	return total.Sub(total, s.FeesBurned)
}

type storedSupply struct {
	Minted     *big.Int
	Burned     *big.Int
	FeesBurned *big.Int
}

// Supply returns the persisted supply counters, zero-valued when unset.
func (m *Manager) Supply() (Supply, error) {
	var stored storedSupply
	ok, err := m.KVGet(supplyKey, &stored)
	if err != nil {
		return Supply{}, err
	}
	supply := Supply{Minted: big.NewInt(0), Burned: big.NewInt(0), FeesBurned: big.NewInt(0)}
	if !ok {
		return supply, nil
	}
	if stored.Minted != nil {
		supply.Minted = stored.Minted
	}
	if stored.Burned != nil {
		supply.Burned = stored.Burned
	}
	if stored.FeesBurned != nil {
		supply.FeesBurned = stored.FeesBurned
	}
	return supply, nil
}

func (m *Manager) writeSupply(supply Supply) error {
	stored := storedSupply{
		Minted:     supply.Minted,
		Burned:     supply.Burned,
		FeesBurned: supply.FeesBurned,
	}
	return m.KVPut(supplyKey, &stored)
}

// AddMinted increments the cumulative minted amount.
func (m *Manager) AddMinted(delta *big.Int) error {
	return m.adjustSupply(delta, func(s *Supply, d *big.Int) { s.Minted.Add(s.Minted, d) })
}

// AddBurned increments the cumulative burned amount.
func (m *Manager) AddBurned(delta *big.Int) error {
	return m.adjustSupply(delta, func(s *Supply, d *big.Int) { s.Burned.Add(s.Burned, d) })
}

// AddFeesBurned increments the cumulative fee-burn amount.
func (m *Manager) AddFeesBurned(delta *big.Int) error {
	return m.adjustSupply(delta, func(s *Supply, d *big.Int) { s.FeesBurned.Add(s.FeesBurned, d) })
}

func (m *Manager) adjustSupply(delta *big.Int, apply func(*Supply, *big.Int)) error {
	if delta == nil || delta.Sign() < 0 {
		return fmt.Errorf("state: supply delta must be non-negative")
	}
	supply, err := m.Supply()
	if err != nil {
		return err
	}
	apply(&supply, delta)
	if supply.Circulating().Sign() < 0 {
		return fmt.Errorf("state: circulating supply cannot go negative")
	}
	return m.writeSupply(supply)
}
