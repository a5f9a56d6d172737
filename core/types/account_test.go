package types

import (
	"bytes"
	"testing"
)

func TestAccountNormalizeFoldsZeroSubaccount(t *testing.T) {
	owner := []byte{0x01, 0x02, 0x03}
	var zero [SubaccountLength]byte
	withZero := Account{Owner: owner, Subaccount: &zero}
	plain := Account{Owner: owner}

	if withZero.Normalize().Subaccount != nil {
		t.Fatalf("zero subaccount should normalize to absent")
	}
	if !withZero.Equal(plain) {
		t.Fatalf("zero-subaccount account should equal the default account")
	}
	if !bytes.Equal(withZero.StateKey(), plain.StateKey()) {
		t.Fatalf("state keys should agree for canonical equal accounts")
	}
}

func TestAccountEqualDistinguishesSubaccounts(t *testing.T) {
	owner := []byte{0xAA}
	var sub [SubaccountLength]byte
	sub[31] = 1
	withSub := Account{Owner: owner, Subaccount: &sub}
	plain := Account{Owner: owner}

	if withSub.Equal(plain) {
		t.Fatalf("distinct subaccounts should not compare equal")
	}
	if bytes.Equal(withSub.StateKey(), plain.StateKey()) {
		t.Fatalf("distinct subaccounts should derive distinct state keys")
	}
}

func TestAccountStateKeyNoConcatenationCollision(t *testing.T) {
	// Length prefixing must keep ab+c distinct from a+bc.
	left := Account{Owner: []byte{0x01, 0x02}}
	right := Account{Owner: []byte{0x01}}
	if bytes.Equal(left.StateKey(), right.StateKey()) {
		t.Fatalf("owners of different lengths should not collide")
	}
}

func TestStoredAccountRoundTrip(t *testing.T) {
	var sub [SubaccountLength]byte
	sub[0] = 0x7F
	cases := []Account{
		{Owner: []byte{0x01, 0x02, 0x03}},
		{Owner: []byte{0x01}, Subaccount: &sub},
	}
	for _, acct := range cases {
		restored, err := accountFromStored(accountToStored(acct))
		if err != nil {
			t.Fatalf("round trip %s: %v", acct, err)
		}
		if !restored.Equal(acct) {
			t.Fatalf("round trip mismatch: got %s want %s", restored, acct)
		}
	}
}

func TestStoredAccountRejectsBadSubaccountLength(t *testing.T) {
	if _, err := accountFromStored(storedAccount{Owner: []byte{0x01}, Subaccount: []byte{0x01, 0x02}}); err == nil {
		t.Fatalf("expected error for truncated subaccount")
	}
}
