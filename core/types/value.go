package types

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	ValueBlob ValueKind = iota + 1
	ValueText
	ValueNat
	ValueNat64
	ValueInt
	ValueArray
	ValueMap
)

// Value is the self-describing structured form in which block contents are
// reported to callers. It mirrors the generic value model of the ledger
// interchange format: a tagged union over blobs, text, integers, arrays and
// ordered key/value maps.
type Value struct {
	Kind  ValueKind
	Blob  []byte
	Text  string
	Nat   *big.Int
	Nat64 uint64
	Int   *big.Int
	Array []Value
	Map   []MapEntry
}

// MapEntry is one ordered key/value pair of a map Value.
type MapEntry struct {
	Key   string
	Value Value
}

func BlobValue(b []byte) Value { return Value{Kind: ValueBlob, Blob: append([]byte(nil), b...)} }
func TextValue(s string) Value { return Value{Kind: ValueText, Text: s} }
func Nat64Value(n uint64) Value {
	return Value{Kind: ValueNat64, Nat64: n}
}
func NatValue(n *big.Int) Value {
	if n == nil {
		n = big.NewInt(0)
	}
	return Value{Kind: ValueNat, Nat: new(big.Int).Set(n)}
}
func IntValue(n *big.Int) Value {
	if n == nil {
		n = big.NewInt(0)
	}
	return Value{Kind: ValueInt, Int: new(big.Int).Set(n)}
}
func ArrayValue(items ...Value) Value { return Value{Kind: ValueArray, Array: items} }
func MapValue(entries ...MapEntry) Value {
	return Value{Kind: ValueMap, Map: entries}
}

// MarshalJSON renders the value as a single-key object naming the variant, so
// external consumers can decode without a schema.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueBlob:
		return json.Marshal(map[string]string{"blob": base64.StdEncoding.EncodeToString(v.Blob)})
	case ValueText:
		return json.Marshal(map[string]string{"text": v.Text})
	case ValueNat:
		return json.Marshal(map[string]string{"nat": nonNil(v.Nat).String()})
	case ValueNat64:
		return json.Marshal(map[string]uint64{"nat64": v.Nat64})
	case ValueInt:
		return json.Marshal(map[string]string{"int": nonNil(v.Int).String()})
	case ValueArray:
		items := v.Array
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(map[string][]Value{"array": items})
	case ValueMap:
		entries := make([]map[string]json.RawMessage, 0, len(v.Map))
		for _, entry := range v.Map {
			encoded, err := json.Marshal(entry.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, map[string]json.RawMessage{entry.Key: encoded})
		}
		return json.Marshal(map[string]any{"map": entries})
	default:
		return nil, fmt.Errorf("types: unknown value kind %d", v.Kind)
	}
}

// AccountValue renders an account in its interchange form: an array holding
// the owner blob and, when present, the subaccount blob.
func AccountValue(a Account) Value {
	norm := a.Normalize()
	items := []Value{BlobValue(norm.Owner)}
	if norm.Subaccount != nil {
		items = append(items, BlobValue(norm.Subaccount[:]))
	}
	return ArrayValue(items...)
}

// RecordValue renders a committed transaction record as a self-describing
// map. Key names follow the compact interchange convention ("op", "amt",
// "ts") so archived and hot blocks remain directly comparable.
func RecordValue(r *TransactionRecord) (Value, error) {
	if r == nil {
		return Value{}, fmt.Errorf("types: nil transaction record")
	}
	entries := []MapEntry{{Key: "ts", Value: Nat64Value(r.Timestamp)}}
	appendOptional := func(memo []byte, createdAt *uint64) {
		if len(memo) > 0 {
			entries = append(entries, MapEntry{Key: "memo", Value: BlobValue(memo)})
		}
		if createdAt != nil {
			entries = append(entries, MapEntry{Key: "created_at_time", Value: Nat64Value(*createdAt)})
		}
	}
	switch r.Kind {
	case OpMint:
		if r.Mint == nil {
			return Value{}, fmt.Errorf("types: mint record missing payload")
		}
		entries = append(entries,
			MapEntry{Key: "op", Value: TextValue("mint")},
			MapEntry{Key: "to", Value: AccountValue(r.Mint.To)},
			MapEntry{Key: "amt", Value: NatValue(r.Mint.Amount)},
		)
		appendOptional(r.Mint.Memo, r.Mint.CreatedAt)
	case OpBurn:
		if r.Burn == nil {
			return Value{}, fmt.Errorf("types: burn record missing payload")
		}
		entries = append(entries,
			MapEntry{Key: "op", Value: TextValue("burn")},
			MapEntry{Key: "from", Value: AccountValue(r.Burn.From)},
			MapEntry{Key: "amt", Value: NatValue(r.Burn.Amount)},
		)
		if r.Burn.Spender != nil {
			entries = append(entries, MapEntry{Key: "spender", Value: AccountValue(*r.Burn.Spender)})
		}
		appendOptional(r.Burn.Memo, r.Burn.CreatedAt)
	case OpTransfer:
		if r.Transfer == nil {
			return Value{}, fmt.Errorf("types: transfer record missing payload")
		}
		entries = append(entries,
			MapEntry{Key: "op", Value: TextValue("xfer")},
			MapEntry{Key: "from", Value: AccountValue(r.Transfer.From)},
			MapEntry{Key: "to", Value: AccountValue(r.Transfer.To)},
			MapEntry{Key: "amt", Value: NatValue(r.Transfer.Amount)},
		)
		if r.Transfer.Spender != nil {
			entries = append(entries, MapEntry{Key: "spender", Value: AccountValue(*r.Transfer.Spender)})
		}
		if r.Transfer.Fee != nil {
			entries = append(entries, MapEntry{Key: "fee", Value: NatValue(r.Transfer.Fee)})
		}
		appendOptional(r.Transfer.Memo, r.Transfer.CreatedAt)
	case OpApprove:
		if r.Approve == nil {
			return Value{}, fmt.Errorf("types: approve record missing payload")
		}
		entries = append(entries,
			MapEntry{Key: "op", Value: TextValue("approve")},
			MapEntry{Key: "from", Value: AccountValue(r.Approve.From)},
			MapEntry{Key: "spender", Value: AccountValue(r.Approve.Spender)},
			MapEntry{Key: "amt", Value: NatValue(r.Approve.Amount)},
		)
		if r.Approve.ExpectedAllowance != nil {
			entries = append(entries, MapEntry{Key: "expected_allowance", Value: NatValue(r.Approve.ExpectedAllowance)})
		}
		if r.Approve.ExpiresAt != nil {
			entries = append(entries, MapEntry{Key: "expires_at", Value: Nat64Value(*r.Approve.ExpiresAt)})
		}
		if r.Approve.Fee != nil {
			entries = append(entries, MapEntry{Key: "fee", Value: NatValue(r.Approve.Fee)})
		}
		appendOptional(r.Approve.Memo, r.Approve.CreatedAt)
	default:
		return Value{}, fmt.Errorf("types: unknown operation kind %s", r.Kind)
	}
	return MapValue(entries...), nil
}
