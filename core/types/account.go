package types

import (
	"bytes"
	"encoding/hex"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SubaccountLength is the fixed size of an account subaccount.
const SubaccountLength = 32

// Account identifies a ledger account: an owner identity plus an optional
// subaccount partitioning the owner's funds. The all-zero subaccount is the
// canonical default and is equivalent to an absent one.
type Account struct {
	Owner      []byte
	Subaccount *[SubaccountLength]byte
}

// NewAccount builds an account for the given owner and optional subaccount,
// already normalized.
func NewAccount(owner []byte, subaccount *[SubaccountLength]byte) Account {
	acct := Account{Owner: append([]byte(nil), owner...), Subaccount: subaccount}
	return acct.Normalize()
}

// Normalize folds the all-zero subaccount into the absent default so that the
// two spellings of the same account compare and hash identically.
func (a Account) Normalize() Account {
	out := a
	if out.Subaccount != nil && *out.Subaccount == [SubaccountLength]byte{} {
		out.Subaccount = nil
	}
	return out
}

// Equal reports whether two accounts identify the same owner and subaccount
// after normalization.
func (a Account) Equal(other Account) bool {
	left, right := a.Normalize(), other.Normalize()
	if !bytes.Equal(left.Owner, right.Owner) {
		return false
	}
	if (left.Subaccount == nil) != (right.Subaccount == nil) {
		return false
	}
	if left.Subaccount == nil {
		return true
	}
	return *left.Subaccount == *right.Subaccount
}

// Copy returns a deep copy to avoid callers mutating shared slices.
func (a Account) Copy() Account {
	out := Account{Owner: append([]byte(nil), a.Owner...)}
	if a.Subaccount != nil {
		sub := *a.Subaccount
		out.Subaccount = &sub
	}
	return out
}

// StateKey derives the storage key for this account. The encoding is length
// prefixed so distinct (owner, subaccount) pairs can never collide before
// hashing.
func (a Account) StateKey() []byte {
	norm := a.Normalize()
	buf := make([]byte, 0, 1+len(norm.Owner)+1+SubaccountLength)
	buf = append(buf, byte(len(norm.Owner)))
	buf = append(buf, norm.Owner...)
	if norm.Subaccount != nil {
		buf = append(buf, 1)
		buf = append(buf, norm.Subaccount[:]...)
	} else {
		buf = append(buf, 0)
	}
	return ethcrypto.Keccak256(buf)
}

// String renders the account as hex for logs and error messages.
func (a Account) String() string {
	norm := a.Normalize()
	if norm.Subaccount == nil {
		return hex.EncodeToString(norm.Owner)
	}
	return fmt.Sprintf("%s.%s", hex.EncodeToString(norm.Owner), hex.EncodeToString(norm.Subaccount[:]))
}

// storedAccount is the RLP-friendly shadow of Account. An empty subaccount
// slice encodes the canonical default.
type storedAccount struct {
	Owner      []byte
	Subaccount []byte
}

func accountToStored(a Account) storedAccount {
	norm := a.Normalize()
	stored := storedAccount{Owner: append([]byte(nil), norm.Owner...)}
	if norm.Subaccount != nil {
		stored.Subaccount = append([]byte(nil), norm.Subaccount[:]...)
	}
	return stored
}

func accountFromStored(stored storedAccount) (Account, error) {
	acct := Account{Owner: append([]byte(nil), stored.Owner...)}
	switch len(stored.Subaccount) {
	case 0:
	case SubaccountLength:
		var sub [SubaccountLength]byte
		copy(sub[:], stored.Subaccount)
		acct.Subaccount = &sub
	default:
		return Account{}, fmt.Errorf("types: subaccount must be %d bytes (got %d)", SubaccountLength, len(stored.Subaccount))
	}
	return acct.Normalize(), nil
}
