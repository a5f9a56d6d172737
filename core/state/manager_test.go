package state

import (
	"math/big"
	"testing"

	"tokenledger/core/types"
	"tokenledger/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func acct(fill byte) types.Account {
	return types.Account{Owner: []byte{fill, fill, fill, fill}}
}

func TestBalanceDefaultsToZero(t *testing.T) {
	m := newTestManager(t)
	balance, err := m.Balance(acct(0x01))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("expected zero balance, got %s", balance)
	}
}

func TestCreditDebitRoundTrip(t *testing.T) {
	m := newTestManager(t)
	a := acct(0x01)

	if err := m.Credit(a, big.NewInt(1000)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := m.Debit(a, big.NewInt(310)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	balance, err := m.Balance(a)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(690)) != 0 {
		t.Fatalf("expected 690, got %s", balance)
	}
}

func TestDebitBelowZeroRejected(t *testing.T) {
	m := newTestManager(t)
	a := acct(0x02)
	if err := m.Credit(a, big.NewInt(5)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := m.Debit(a, big.NewInt(6)); err == nil {
		t.Fatalf("debit past zero should fail")
	}
	balance, _ := m.Balance(a)
	if balance.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("failed debit must not change balance, got %s", balance)
	}
}

func TestZeroBalanceEntryRemoved(t *testing.T) {
	m := newTestManager(t)
	a := acct(0x03)
	if err := m.Credit(a, big.NewInt(7)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := m.Debit(a, big.NewInt(7)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	ok, err := m.KVGet(balanceKey(a), nil)
	if err != nil {
		t.Fatalf("kv get: %v", err)
	}
	if ok {
		t.Fatalf("zero balance entry should be deleted")
	}
}

func TestAllowanceLifecycle(t *testing.T) {
	m := newTestManager(t)
	owner, spender := acct(0x0A), acct(0x0B)

	got, err := m.Allowance(owner, spender, 100)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if got.Amount.Sign() != 0 || got.ExpiresAt != nil {
		t.Fatalf("missing allowance should read as zero, got %+v", got)
	}

	expires := uint64(500)
	if err := m.SetAllowance(owner, spender, Allowance{Amount: big.NewInt(200), ExpiresAt: &expires}); err != nil {
		t.Fatalf("set allowance: %v", err)
	}

	got, err = m.Allowance(owner, spender, 100)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if got.Amount.Cmp(big.NewInt(200)) != 0 || got.ExpiresAt == nil || *got.ExpiresAt != expires {
		t.Fatalf("allowance mismatch: %+v", got)
	}

	// Past the expiry, the grant reads as zero.
	got, err = m.Allowance(owner, spender, 501)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if got.Amount.Sign() != 0 {
		t.Fatalf("expired allowance should read as zero, got %s", got.Amount)
	}
}

func TestConsumeAllowance(t *testing.T) {
	m := newTestManager(t)
	owner, spender := acct(0x0C), acct(0x0D)
	if err := m.SetAllowance(owner, spender, Allowance{Amount: big.NewInt(200)}); err != nil {
		t.Fatalf("set allowance: %v", err)
	}
	if err := m.ConsumeAllowance(owner, spender, big.NewInt(160), 0); err != nil {
		t.Fatalf("consume: %v", err)
	}
	got, _ := m.Allowance(owner, spender, 0)
	if got.Amount.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("expected 40 remaining, got %s", got.Amount)
	}
	if err := m.ConsumeAllowance(owner, spender, big.NewInt(41), 0); err == nil {
		t.Fatalf("over-consumption should fail")
	}
	// Spending the remainder removes the entry.
	if err := m.ConsumeAllowance(owner, spender, big.NewInt(40), 0); err != nil {
		t.Fatalf("consume remainder: %v", err)
	}
	ok, err := m.KVGet(allowanceKey(owner, spender), nil)
	if err != nil {
		t.Fatalf("kv get: %v", err)
	}
	if ok {
		t.Fatalf("fully spent allowance entry should be deleted")
	}
}

func TestSupplyCounters(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddMinted(big.NewInt(1000)); err != nil {
		t.Fatalf("add minted: %v", err)
	}
	if err := m.AddBurned(big.NewInt(100)); err != nil {
		t.Fatalf("add burned: %v", err)
	}
	if err := m.AddFeesBurned(big.NewInt(20)); err != nil {
		t.Fatalf("add fees: %v", err)
	}
	supply, err := m.Supply()
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply.Circulating().Cmp(big.NewInt(880)) != 0 {
		t.Fatalf("expected circulating 880, got %s", supply.Circulating())
	}
	if err := m.AddBurned(big.NewInt(881)); err == nil {
		t.Fatalf("burning past circulating supply should fail")
	}
}

func TestTokenMetadataRoundTrip(t *testing.T) {
	m := newTestManager(t)
	meta, err := m.TokenMetadata()
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta != nil {
		t.Fatalf("uninitialised ledger should have no metadata")
	}
	want := &TokenMetadata{Name: "Test Token", Symbol: "TST", Decimals: 8, Fee: big.NewInt(10)}
	if err := m.SetTokenMetadata(want); err != nil {
		t.Fatalf("set metadata: %v", err)
	}
	meta, err = m.TokenMetadata()
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.Name != want.Name || meta.Symbol != want.Symbol || meta.Decimals != want.Decimals || meta.Fee.Cmp(want.Fee) != 0 {
		t.Fatalf("metadata mismatch: %+v", meta)
	}
}

func TestMintingAccountRoundTrip(t *testing.T) {
	m := newTestManager(t)
	minting, err := m.MintingAccount()
	if err != nil {
		t.Fatalf("minting account: %v", err)
	}
	if minting != nil {
		t.Fatalf("uninitialised ledger should have no minting account")
	}

	if err := m.SetMintingAccount(types.Account{}); err == nil {
		t.Fatalf("storing a minting account without owner should fail")
	}

	var sub [types.SubaccountLength]byte
	sub[31] = 9
	want := types.NewAccount([]byte{0xAA, 0xBB}, &sub)
	if err := m.SetMintingAccount(want); err != nil {
		t.Fatalf("set minting account: %v", err)
	}
	minting, err = m.MintingAccount()
	if err != nil {
		t.Fatalf("minting account: %v", err)
	}
	if minting == nil || !minting.Equal(want) {
		t.Fatalf("minting account mismatch: %+v", minting)
	}

	// Rotation replaces the stored account.
	next := acct(0x0C)
	if err := m.SetMintingAccount(next); err != nil {
		t.Fatalf("rotate minting account: %v", err)
	}
	minting, err = m.MintingAccount()
	if err != nil {
		t.Fatalf("minting account: %v", err)
	}
	if minting == nil || !minting.Equal(next) {
		t.Fatalf("rotated minting account mismatch: %+v", minting)
	}
}
