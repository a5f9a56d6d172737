package core

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"tokenledger/core/types"
)

// Fingerprint is the deduplication key of a transaction: a keccak256 digest
// over the record's defining fields (kind, accounts, amount, fee, memo and
// client timestamp). The ledger-assigned timestamp is excluded so a retry of
// the same logical transaction hashes identically.
type Fingerprint [32]byte

// RecordFingerprint derives the fingerprint for a record. Records without a
// client-supplied timestamp are not deduplicated, matching the rule that the
// retention window is anchored on created-at time; for those the second
// return value is false.
func RecordFingerprint(record *types.TransactionRecord) (Fingerprint, bool) {
	var fp Fingerprint
	if record == nil || record.CreatedAt() == nil {
		return fp, false
	}
	normalized := *record
	normalized.Timestamp = 0
	encoded, err := types.EncodeRecord(&normalized)
	if err != nil {
		return fp, false
	}
	copy(fp[:], ethcrypto.Keccak256(encoded))
	return fp, true
}

type dedupEntry struct {
	fp    Fingerprint
	seen  uint64 // ledger time at acceptance
	index uint64
}

// dedupCache maps fingerprints of recently accepted transactions to the block
// index of the original acceptance. Entries are retained for the transaction
// window and pruned afterwards; beyond that age the time-window validation
// alone rejects a genuine resubmission. Ledger timestamps are assigned
// monotonically, so the queue stays sorted by acceptance time and pruning
// walks it from the front.
type dedupCache struct {
	window   uint64
	capacity int
	index    map[Fingerprint]uint64
	queue    []dedupEntry
}

func newDedupCache(window uint64, capacity int) *dedupCache {
	return &dedupCache{
		window:   window,
		capacity: capacity,
		index:    make(map[Fingerprint]uint64),
	}
}

// Lookup returns the block index of the original acceptance, if the
// fingerprint is still retained.
func (c *dedupCache) Lookup(fp Fingerprint) (uint64, bool) {
	idx, ok := c.index[fp]
	return idx, ok
}

// Remember records an accepted transaction's fingerprint.
func (c *dedupCache) Remember(fp Fingerprint, blockIndex, now uint64) {
	if _, ok := c.index[fp]; ok {
		return
	}
	c.index[fp] = blockIndex
	c.queue = append(c.queue, dedupEntry{fp: fp, seen: now, index: blockIndex})
}

// Prune drops entries older than the retention window and reports how many
// were removed.
func (c *dedupCache) Prune(now uint64) int {
	pruned := 0
	for pruned < len(c.queue) {
		head := c.queue[pruned]
		if head.seen+c.window >= now {
			break
		}
		delete(c.index, head.fp)
		pruned++
	}
	if pruned > 0 {
		// Compact in place and zero the freed tail so the backing array
		// does not pin pruned entries.
		remaining := copy(c.queue, c.queue[pruned:])
		for i := remaining; i < len(c.queue); i++ {
			c.queue[i] = dedupEntry{}
		}
		c.queue = c.queue[:remaining]
	}
	return pruned
}

// Full reports whether the window already holds the configured maximum number
// of fingerprints.
func (c *dedupCache) Full() bool {
	return c.capacity > 0 && len(c.index) >= c.capacity
}

// Len returns the number of retained fingerprints.
func (c *dedupCache) Len() int {
	return len(c.index)
}
