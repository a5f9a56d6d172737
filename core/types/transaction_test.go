package types

import (
	"math/big"
	"testing"
)

func testAccount(fill byte) Account {
	return Account{Owner: []byte{fill, fill, fill, fill}}
}

func TestEncodeDecodeTransferRecord(t *testing.T) {
	createdAt := uint64(42)
	spender := testAccount(0xCC)
	record := NewTransferRecord(Transfer{
		From:      testAccount(0xAA),
		To:        testAccount(0xBB),
		Spender:   &spender,
		Amount:    big.NewInt(300),
		Fee:       big.NewInt(10),
		Memo:      []byte("invoice-7"),
		CreatedAt: &createdAt,
	}, 9000)

	data, err := EncodeRecord(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Kind != OpTransfer || decoded.Transfer == nil {
		t.Fatalf("wrong kind after decode: %v", decoded.Kind)
	}
	tr := decoded.Transfer
	if !tr.From.Equal(record.Transfer.From) || !tr.To.Equal(record.Transfer.To) {
		t.Fatalf("accounts mismatch after round trip")
	}
	if tr.Spender == nil || !tr.Spender.Equal(spender) {
		t.Fatalf("spender lost in round trip")
	}
	if tr.Amount.Cmp(big.NewInt(300)) != 0 || tr.Fee.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("amounts mismatch: amt=%s fee=%s", tr.Amount, tr.Fee)
	}
	if string(tr.Memo) != "invoice-7" {
		t.Fatalf("memo mismatch: %q", tr.Memo)
	}
	if tr.CreatedAt == nil || *tr.CreatedAt != 42 {
		t.Fatalf("createdAt mismatch: %v", tr.CreatedAt)
	}
	if decoded.Timestamp != 9000 {
		t.Fatalf("timestamp mismatch: %d", decoded.Timestamp)
	}
}

func TestEncodeDecodeApproveOptionals(t *testing.T) {
	expires := uint64(777)
	record := NewApproveRecord(Approve{
		From:              testAccount(0x01),
		Spender:           testAccount(0x02),
		Amount:            big.NewInt(200),
		ExpectedAllowance: big.NewInt(50),
		ExpiresAt:         &expires,
		Fee:               big.NewInt(10),
	}, 1)

	data, err := EncodeRecord(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ap := decoded.Approve
	if ap == nil {
		t.Fatalf("approve payload missing")
	}
	if ap.ExpectedAllowance == nil || ap.ExpectedAllowance.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("expected allowance lost: %v", ap.ExpectedAllowance)
	}
	if ap.ExpiresAt == nil || *ap.ExpiresAt != expires {
		t.Fatalf("expiry lost: %v", ap.ExpiresAt)
	}
	if ap.Memo != nil {
		t.Fatalf("absent memo should decode as nil, got %v", ap.Memo)
	}
	if ap.CreatedAt != nil {
		t.Fatalf("absent createdAt should decode as nil")
	}
}

func TestDecodeMintAbsentOptionals(t *testing.T) {
	record := NewMintRecord(Mint{To: testAccount(0x0F), Amount: big.NewInt(1000)}, 5)
	data, err := EncodeRecord(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Mint == nil || decoded.Mint.CreatedAt != nil || decoded.Mint.Memo != nil {
		t.Fatalf("unexpected optionals on mint: %+v", decoded.Mint)
	}
	if decoded.CreatedAt() != nil {
		t.Fatalf("record CreatedAt helper should be nil")
	}
}

func TestRecordValueRendersCompactKeys(t *testing.T) {
	record := NewBurnRecord(Burn{From: testAccount(0xAB), Amount: big.NewInt(25)}, 77)
	value, err := RecordValue(record)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if value.Kind != ValueMap {
		t.Fatalf("expected map value")
	}
	keys := map[string]bool{}
	for _, entry := range value.Map {
		keys[entry.Key] = true
	}
	for _, want := range []string{"ts", "op", "from", "amt"} {
		if !keys[want] {
			t.Fatalf("missing key %q in %v", want, keys)
		}
	}
	if keys["memo"] || keys["spender"] {
		t.Fatalf("absent fields must not be rendered: %v", keys)
	}
}
