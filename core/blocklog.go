package core

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"tokenledger/core/types"
	"tokenledger/storage"
)

var (
	blockKeyPrefix = []byte("log/block/")
	logMetaKey     = []byte("log/meta")
)

// ArchiveCallback identifies the external archive holding migrated block
// ranges: an address plus a method name forming its query entry point. The
// core never invokes it; callers re-query the archive themselves.
type ArchiveCallback struct {
	Address string
	Method  string
}

// GetBlocksArgs is one contiguous range request, either as issued by a caller
// or as the re-query a caller should send to an archive.
type GetBlocksArgs struct {
	Start  uint64
	Length uint64
}

// ArchivedRange points a caller at the archive for block indices no longer
// held in primary storage.
type ArchivedRange struct {
	Args     []GetBlocksArgs
	Callback ArchiveCallback
}

// GetBlocksResult is the paginated view over the log: the true total length,
// the hot blocks inside the requested range, and archive pointers covering
// the remainder. The union of blocks and pointers covers the requested range
// intersected with [0, LogLength) exactly, with no gaps.
type GetBlocksResult struct {
	LogLength      uint64
	Blocks         []types.Block
	ArchivedBlocks []ArchivedRange
}

// BlockLog is the append-only ordered sequence of committed transaction
// records. A hot tail remains in primary storage; a contiguous prefix may be
// migrated to an external archive, moving the boundary but never touching
// content or indices. The log carries no lock of its own: it is mutated only
// from the ledger's commit path.
type BlockLog struct {
	db           storage.Database
	length       uint64
	archivedUpTo uint64
	archive      ArchiveCallback
}

type storedLogMeta struct {
	Length         uint64
	ArchivedUpTo   uint64
	ArchiveAddress string
	ArchiveMethod  string
}

// NewBlockLog opens the block log, restoring its metadata when present.
func NewBlockLog(db storage.Database) (*BlockLog, error) {
	log := &BlockLog{db: db}
	data, err := db.Get(logMetaKey)
	if errors.Is(err, storage.ErrNotFound) {
		return log, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blocklog: read metadata: %w", err)
	}
	var meta storedLogMeta
	if err := rlp.DecodeBytes(data, &meta); err != nil {
		return nil, fmt.Errorf("blocklog: decode metadata: %w", err)
	}
	log.length = meta.Length
	log.archivedUpTo = meta.ArchivedUpTo
	log.archive = ArchiveCallback{Address: meta.ArchiveAddress, Method: meta.ArchiveMethod}
	return log, nil
}

func (l *BlockLog) writeMeta() error {
	meta := storedLogMeta{
		Length:         l.length,
		ArchivedUpTo:   l.archivedUpTo,
		ArchiveAddress: l.archive.Address,
		ArchiveMethod:  l.archive.Method,
	}
	encoded, err := rlp.EncodeToBytes(&meta)
	if err != nil {
		return fmt.Errorf("blocklog: encode metadata: %w", err)
	}
	return l.db.Put(logMetaKey, encoded)
}

func blockKey(index uint64) []byte {
	key := make([]byte, len(blockKeyPrefix)+8)
	copy(key, blockKeyPrefix)
	binary.BigEndian.PutUint64(key[len(blockKeyPrefix):], index)
	return key
}

// Length returns the true total log length, including the archived prefix.
func (l *BlockLog) Length() uint64 {
	return l.length
}

// ArchivedUpTo returns the first index retained in primary storage.
func (l *BlockLog) ArchivedUpTo() uint64 {
	return l.archivedUpTo
}

// Append commits a record at the next index and returns that index.
func (l *BlockLog) Append(record *types.TransactionRecord) (uint64, error) {
	encoded, err := types.EncodeRecord(record)
	if err != nil {
		return 0, fmt.Errorf("blocklog: encode record: %w", err)
	}
	index := l.length
	if err := l.db.Put(blockKey(index), encoded); err != nil {
		return 0, fmt.Errorf("blocklog: store block %d: %w", index, err)
	}
	l.length++
	if err := l.writeMeta(); err != nil {
		return 0, err
	}
	return index, nil
}

// Block retrieves a single block from the hot tail.
func (l *BlockLog) Block(index uint64) (*types.Block, error) {
	if index >= l.length {
		return nil, fmt.Errorf("blocklog: index %d beyond log length %d", index, l.length)
	}
	if index < l.archivedUpTo {
		return nil, fmt.Errorf("blocklog: index %d migrated to archive", index)
	}
	data, err := l.db.Get(blockKey(index))
	if err != nil {
		return nil, fmt.Errorf("blocklog: read block %d: %w", index, err)
	}
	record, err := types.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("blocklog: block %d: %w", index, err)
	}
	return &types.Block{Index: index, Record: record}, nil
}

// GetBlocks serves the pagination contract: the requested range is clamped to
// maxPage and intersected with [0, Length); indices below the archive
// boundary come back as a re-query pointer, the rest as blocks in index
// order.
func (l *BlockLog) GetBlocks(start, length, maxPage uint64) (*GetBlocksResult, error) {
	result := &GetBlocksResult{
		LogLength:      l.length,
		Blocks:         []types.Block{},
		ArchivedBlocks: []ArchivedRange{},
	}
	if length > maxPage {
		length = maxPage
	}
	if start >= l.length || length == 0 {
		return result, nil
	}
	end := start + length
	if end > l.length {
		end = l.length
	}
	if start < l.archivedUpTo {
		archivedEnd := end
		if archivedEnd > l.archivedUpTo {
			archivedEnd = l.archivedUpTo
		}
		result.ArchivedBlocks = append(result.ArchivedBlocks, ArchivedRange{
			Args:     []GetBlocksArgs{{Start: start, Length: archivedEnd - start}},
			Callback: l.archive,
		})
		start = archivedEnd
	}
	for i := start; i < end; i++ {
		block, err := l.Block(i)
		if err != nil {
			return nil, err
		}
		result.Blocks = append(result.Blocks, *block)
	}
	return result, nil
}

// MigrateToArchive moves the archive boundary to upTo after the range below
// it has been copied to the archive identified by callback, and drops the
// migrated blocks from primary storage. The boundary never regresses and
// never overtakes the tail.
func (l *BlockLog) MigrateToArchive(upTo uint64, callback ArchiveCallback) error {
	if upTo > l.length {
		return fmt.Errorf("blocklog: cannot archive up to %d, log length %d", upTo, l.length)
	}
	if upTo < l.archivedUpTo {
		return fmt.Errorf("blocklog: archive boundary cannot regress from %d to %d", l.archivedUpTo, upTo)
	}
	if callback.Address == "" || callback.Method == "" {
		return fmt.Errorf("blocklog: archive callback requires an address and method")
	}
	for i := l.archivedUpTo; i < upTo; i++ {
		if err := l.db.Delete(blockKey(i)); err != nil {
			return fmt.Errorf("blocklog: drop migrated block %d: %w", i, err)
		}
	}
	l.archivedUpTo = upTo
	l.archive = callback
	return l.writeMeta()
}
