package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

// OpKind tags the variant carried by a transaction record.
type OpKind byte

const (
	OpMint     OpKind = 0x01 // supply created on the minting account's authority
	OpBurn     OpKind = 0x02 // supply removed from circulation
	OpTransfer OpKind = 0x03 // funds moved between accounts, directly or via a spender
	OpApprove  OpKind = 0x04 // spending grant replaced
)

func (k OpKind) String() string {
	switch k {
	case OpMint:
		return "mint"
	case OpBurn:
		return "burn"
	case OpTransfer:
		return "transfer"
	case OpApprove:
		return "approve"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(k))
	}
}

// Mint credits newly created supply to an account.
type Mint struct {
	To        Account
	Amount    *big.Int
	Memo      []byte
	CreatedAt *uint64
}

// Burn removes supply from circulation. Spender is set for delegated burns.
type Burn struct {
	From      Account
	Spender   *Account
	Amount    *big.Int
	Memo      []byte
	CreatedAt *uint64
}

// Transfer moves funds between accounts. Spender is set when the transfer was
// executed against an allowance.
type Transfer struct {
	From      Account
	To        Account
	Spender   *Account
	Amount    *big.Int
	Fee       *big.Int
	Memo      []byte
	CreatedAt *uint64
}

// Approve replaces the spending grant from From to Spender.
type Approve struct {
	From              Account
	Spender           Account
	Amount            *big.Int
	ExpectedAllowance *big.Int
	ExpiresAt         *uint64
	Fee               *big.Int
	Memo              []byte
	CreatedAt         *uint64
}

// TransactionRecord is the immutable, tagged record appended to the block log.
// Records are created exclusively by the ledger at commit time; exactly one of
// the variant pointers matching Kind is set.
type TransactionRecord struct {
	Kind      OpKind
	Mint      *Mint
	Burn      *Burn
	Transfer  *Transfer
	Approve   *Approve
	Timestamp uint64 // ledger-assigned, nanoseconds
}

func NewMintRecord(mint Mint, timestamp uint64) *TransactionRecord {
	return &TransactionRecord{Kind: OpMint, Mint: &mint, Timestamp: timestamp}
}

func NewBurnRecord(burn Burn, timestamp uint64) *TransactionRecord {
	return &TransactionRecord{Kind: OpBurn, Burn: &burn, Timestamp: timestamp}
}

func NewTransferRecord(transfer Transfer, timestamp uint64) *TransactionRecord {
	return &TransactionRecord{Kind: OpTransfer, Transfer: &transfer, Timestamp: timestamp}
}

func NewApproveRecord(approve Approve, timestamp uint64) *TransactionRecord {
	return &TransactionRecord{Kind: OpApprove, Approve: &approve, Timestamp: timestamp}
}

// CreatedAt returns the client-supplied timestamp of the record's variant, if
// one was provided with the original call.
func (r *TransactionRecord) CreatedAt() *uint64 {
	switch r.Kind {
	case OpMint:
		if r.Mint != nil {
			return r.Mint.CreatedAt
		}
	case OpBurn:
		if r.Burn != nil {
			return r.Burn.CreatedAt
		}
	case OpTransfer:
		if r.Transfer != nil {
			return r.Transfer.CreatedAt
		}
	case OpApprove:
		if r.Approve != nil {
			return r.Approve.CreatedAt
		}
	}
	return nil
}

// storedRecord flattens the tagged record for RLP. Optional fields carry an
// explicit presence flag; absent amounts encode as zero.
type storedRecord struct {
	Kind         uint8
	Timestamp    uint64
	From         storedAccount
	To           storedAccount
	HasSpender   bool
	Spender      storedAccount
	Amount       *big.Int
	HasFee       bool
	Fee          *big.Int
	HasExpected  bool
	Expected     *big.Int
	HasExpiresAt bool
	ExpiresAt    uint64
	Memo         []byte
	HasCreatedAt bool
	CreatedAt    uint64
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

// EncodeRecord serialises a transaction record for storage.
func EncodeRecord(r *TransactionRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("types: nil transaction record")
	}
	stored := storedRecord{
		Kind:      uint8(r.Kind),
		Timestamp: r.Timestamp,
		Amount:    big.NewInt(0),
		Fee:       big.NewInt(0),
		Expected:  big.NewInt(0),
	}
	setCreatedAt := func(createdAt *uint64) {
		if createdAt != nil {
			stored.HasCreatedAt = true
			stored.CreatedAt = *createdAt
		}
	}
	switch r.Kind {
	case OpMint:
		if r.Mint == nil {
			return nil, fmt.Errorf("types: mint record missing payload")
		}
		stored.To = accountToStored(r.Mint.To)
		stored.Amount = nonNil(r.Mint.Amount)
		stored.Memo = r.Mint.Memo
		setCreatedAt(r.Mint.CreatedAt)
	case OpBurn:
		if r.Burn == nil {
			return nil, fmt.Errorf("types: burn record missing payload")
		}
		stored.From = accountToStored(r.Burn.From)
		if r.Burn.Spender != nil {
			stored.HasSpender = true
			stored.Spender = accountToStored(*r.Burn.Spender)
		}
		stored.Amount = nonNil(r.Burn.Amount)
		stored.Memo = r.Burn.Memo
		setCreatedAt(r.Burn.CreatedAt)
	case OpTransfer:
		if r.Transfer == nil {
			return nil, fmt.Errorf("types: transfer record missing payload")
		}
		stored.From = accountToStored(r.Transfer.From)
		stored.To = accountToStored(r.Transfer.To)
		if r.Transfer.Spender != nil {
			stored.HasSpender = true
			stored.Spender = accountToStored(*r.Transfer.Spender)
		}
		stored.Amount = nonNil(r.Transfer.Amount)
		if r.Transfer.Fee != nil {
			stored.HasFee = true
			stored.Fee = r.Transfer.Fee
		}
		stored.Memo = r.Transfer.Memo
		setCreatedAt(r.Transfer.CreatedAt)
	case OpApprove:
		if r.Approve == nil {
			return nil, fmt.Errorf("types: approve record missing payload")
		}
		stored.From = accountToStored(r.Approve.From)
		stored.Spender = accountToStored(r.Approve.Spender)
		stored.HasSpender = true
		stored.Amount = nonNil(r.Approve.Amount)
		if r.Approve.ExpectedAllowance != nil {
			stored.HasExpected = true
			stored.Expected = r.Approve.ExpectedAllowance
		}
		if r.Approve.ExpiresAt != nil {
			stored.HasExpiresAt = true
			stored.ExpiresAt = *r.Approve.ExpiresAt
		}
		if r.Approve.Fee != nil {
			stored.HasFee = true
			stored.Fee = r.Approve.Fee
		}
		stored.Memo = r.Approve.Memo
		setCreatedAt(r.Approve.CreatedAt)
	default:
		return nil, fmt.Errorf("types: unknown operation kind %s", r.Kind)
	}
	return rlp.EncodeToBytes(&stored)
}

// DecodeRecord deserialises a stored transaction record.
func DecodeRecord(data []byte) (*TransactionRecord, error) {
	var stored storedRecord
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		return nil, fmt.Errorf("types: decode record: %w", err)
	}
	var createdAt *uint64
	if stored.HasCreatedAt {
		ts := stored.CreatedAt
		createdAt = &ts
	}
	memo := append([]byte(nil), stored.Memo...)
	if len(memo) == 0 {
		memo = nil
	}
	record := &TransactionRecord{Kind: OpKind(stored.Kind), Timestamp: stored.Timestamp}
	switch record.Kind {
	case OpMint:
		to, err := accountFromStored(stored.To)
		if err != nil {
			return nil, err
		}
		record.Mint = &Mint{To: to, Amount: stored.Amount, Memo: memo, CreatedAt: createdAt}
	case OpBurn:
		from, err := accountFromStored(stored.From)
		if err != nil {
			return nil, err
		}
		burn := &Burn{From: from, Amount: stored.Amount, Memo: memo, CreatedAt: createdAt}
		if stored.HasSpender {
			spender, err := accountFromStored(stored.Spender)
			if err != nil {
				return nil, err
			}
			burn.Spender = &spender
		}
		record.Burn = burn
	case OpTransfer:
		from, err := accountFromStored(stored.From)
		if err != nil {
			return nil, err
		}
		to, err := accountFromStored(stored.To)
		if err != nil {
			return nil, err
		}
		transfer := &Transfer{From: from, To: to, Amount: stored.Amount, Memo: memo, CreatedAt: createdAt}
		if stored.HasSpender {
			spender, err := accountFromStored(stored.Spender)
			if err != nil {
				return nil, err
			}
			transfer.Spender = &spender
		}
		if stored.HasFee {
			transfer.Fee = stored.Fee
		}
		record.Transfer = transfer
	case OpApprove:
		from, err := accountFromStored(stored.From)
		if err != nil {
			return nil, err
		}
		spender, err := accountFromStored(stored.Spender)
		if err != nil {
			return nil, err
		}
		approve := &Approve{From: from, Spender: spender, Amount: stored.Amount, Memo: memo, CreatedAt: createdAt}
		if stored.HasExpected {
			approve.ExpectedAllowance = stored.Expected
		}
		if stored.HasExpiresAt {
			expires := stored.ExpiresAt
			approve.ExpiresAt = &expires
		}
		if stored.HasFee {
			approve.Fee = stored.Fee
		}
		record.Approve = approve
	default:
		return nil, fmt.Errorf("types: unknown operation kind %s", record.Kind)
	}
	return record, nil
}
