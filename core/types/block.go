package types

// Block is one immutable entry of the transaction log: the record plus its
// position in the global, strictly increasing sequence. Indices are never
// reused or reordered; archival moves blocks to secondary storage without
// altering either field.
type Block struct {
	Index  uint64
	Record *TransactionRecord
}

// Value renders the block content in its self-describing interchange form.
func (b *Block) Value() (Value, error) {
	return RecordValue(b.Record)
}
