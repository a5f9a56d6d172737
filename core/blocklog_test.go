package core

import (
	"math/big"
	"testing"

	"tokenledger/core/types"
	"tokenledger/storage"
)

func newTestLog(t *testing.T, blocks int) *BlockLog {
	t.Helper()
	log, err := NewBlockLog(storage.NewMemDB())
	if err != nil {
		t.Fatalf("new block log: %v", err)
	}
	for i := 0; i < blocks; i++ {
		record := types.NewMintRecord(types.Mint{
			To:     testAcct(0x01),
			Amount: big.NewInt(int64(i + 1)),
		}, testBaseTime+uint64(i))
		index, err := log.Append(record)
		if err != nil {
			t.Fatalf("append block %d: %v", i, err)
		}
		if index != uint64(i) {
			t.Fatalf("append returned index %d, want %d", index, i)
		}
	}
	return log
}

func TestBlockLogAppendAndRead(t *testing.T) {
	log := newTestLog(t, 5)
	if got := log.Length(); got != 5 {
		t.Fatalf("length = %d, want 5", got)
	}
	block, err := log.Block(3)
	if err != nil {
		t.Fatalf("read block 3: %v", err)
	}
	if block.Index != 3 {
		t.Fatalf("block index = %d, want 3", block.Index)
	}
	if block.Record.Mint.Amount.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("block amount = %s, want 4", block.Record.Mint.Amount)
	}
	if _, err := log.Block(5); err == nil {
		t.Fatal("read past end succeeded")
	}
}

func TestGetBlocksPagination(t *testing.T) {
	log := newTestLog(t, 10)

	result, err := log.GetBlocks(2, 3, DefaultMaxPageSize)
	if err != nil {
		t.Fatalf("get blocks: %v", err)
	}
	if result.LogLength != 10 {
		t.Fatalf("log length = %d, want 10", result.LogLength)
	}
	if len(result.Blocks) != 3 || len(result.ArchivedBlocks) != 0 {
		t.Fatalf("got %d inline / %d archived, want 3/0", len(result.Blocks), len(result.ArchivedBlocks))
	}
	for i, block := range result.Blocks {
		if block.Index != uint64(2+i) {
			t.Fatalf("block %d has index %d, want %d", i, block.Index, 2+i)
		}
	}

	// The page size caps the range, and ranges past the end are clamped.
	result, err = log.GetBlocks(0, 1000, 4)
	if err != nil {
		t.Fatalf("get blocks: %v", err)
	}
	if len(result.Blocks) != 4 {
		t.Fatalf("capped page returned %d blocks, want 4", len(result.Blocks))
	}

	result, err = log.GetBlocks(50, 10, DefaultMaxPageSize)
	if err != nil {
		t.Fatalf("get blocks: %v", err)
	}
	if len(result.Blocks) != 0 || len(result.ArchivedBlocks) != 0 {
		t.Fatalf("out-of-range request returned %d/%d blocks", len(result.Blocks), len(result.ArchivedBlocks))
	}
	if result.LogLength != 10 {
		t.Fatalf("log length = %d, want 10", result.LogLength)
	}
}

func TestMigrateToArchive(t *testing.T) {
	log := newTestLog(t, 10)
	callback := ArchiveCallback{Address: "archive-node-0", Method: "get_blocks"}

	if err := log.MigrateToArchive(4, callback); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if got := log.ArchivedUpTo(); got != 4 {
		t.Fatalf("archived up to %d, want 4", got)
	}
	// Migrated blocks are gone from primary storage.
	if _, err := log.Block(2); err == nil {
		t.Fatal("migrated block still readable from primary storage")
	}
	if _, err := log.Block(4); err != nil {
		t.Fatalf("read retained block: %v", err)
	}

	// A request straddling the boundary splits into an archive pointer and
	// inline blocks, with no gap between them.
	result, err := log.GetBlocks(2, 5, DefaultMaxPageSize)
	if err != nil {
		t.Fatalf("get blocks: %v", err)
	}
	if len(result.ArchivedBlocks) != 1 {
		t.Fatalf("got %d archive pointers, want 1", len(result.ArchivedBlocks))
	}
	archived := result.ArchivedBlocks[0]
	if archived.Callback != callback {
		t.Fatalf("archive callback = %+v, want %+v", archived.Callback, callback)
	}
	if len(archived.Args) != 1 || archived.Args[0].Start != 2 || archived.Args[0].Length != 2 {
		t.Fatalf("archive args = %+v, want start 2 length 2", archived.Args)
	}
	if len(result.Blocks) != 3 {
		t.Fatalf("got %d inline blocks, want 3", len(result.Blocks))
	}
	if result.Blocks[0].Index != 4 {
		t.Fatalf("first inline index = %d, want 4", result.Blocks[0].Index)
	}

	// Fully archived requests return only the pointer.
	result, err = log.GetBlocks(0, 3, DefaultMaxPageSize)
	if err != nil {
		t.Fatalf("get blocks: %v", err)
	}
	if len(result.Blocks) != 0 || len(result.ArchivedBlocks) != 1 {
		t.Fatalf("got %d inline / %d archived, want 0/1", len(result.Blocks), len(result.ArchivedBlocks))
	}

	// The boundary only moves forward.
	if err := log.MigrateToArchive(2, callback); err == nil {
		t.Fatal("regressing the archive boundary succeeded")
	}
	if err := log.MigrateToArchive(11, callback); err == nil {
		t.Fatal("archiving past the log end succeeded")
	}
}

func TestBlockLogMetaSurvivesReopen(t *testing.T) {
	db := storage.NewMemDB()
	log, err := NewBlockLog(db)
	if err != nil {
		t.Fatalf("new block log: %v", err)
	}
	for i := 0; i < 6; i++ {
		record := types.NewMintRecord(types.Mint{To: testAcct(0x01), Amount: big.NewInt(1)}, testBaseTime+uint64(i))
		if _, err := log.Append(record); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	callback := ArchiveCallback{Address: "archive-node-0", Method: "get_blocks"}
	if err := log.MigrateToArchive(3, callback); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	reopened, err := NewBlockLog(db)
	if err != nil {
		t.Fatalf("reopen block log: %v", err)
	}
	if reopened.Length() != 6 {
		t.Fatalf("length after reopen = %d, want 6", reopened.Length())
	}
	if reopened.ArchivedUpTo() != 3 {
		t.Fatalf("archive boundary after reopen = %d, want 3", reopened.ArchivedUpTo())
	}
	index, err := reopened.Append(types.NewMintRecord(types.Mint{To: testAcct(0x01), Amount: big.NewInt(1)}, testBaseTime+6))
	if err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if index != 6 {
		t.Fatalf("append after reopen returned %d, want 6", index)
	}
}
