package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBRoundTrip(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	require.NoError(t, db.Put([]byte("balance"), []byte{0x01, 0x02}))

	got, err := db.Get([]byte("balance"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, got)

	ok, err := db.Has([]byte("balance"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, db.Delete([]byte("balance")))

	_, err = db.Get([]byte("balance"))
	require.ErrorIs(t, err, ErrNotFound)

	ok, err = db.Has([]byte("balance"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemDBCopiesValues(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	value := []byte{0xAA}
	require.NoError(t, db.Put([]byte("k"), value))
	value[0] = 0xBB

	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA}, got)

	// Mutating the returned slice must not leak into the store either.
	got[0] = 0xCC
	again, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA}, again)
}

func TestLevelDBRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := NewLevelDB(dir)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("block/0"), []byte("genesis")))

	got, err := db.Get([]byte("block/0"))
	require.NoError(t, err)
	require.Equal(t, []byte("genesis"), got)

	_, err = db.Get([]byte("block/1"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Delete([]byte("block/0")))
	ok, err := db.Has([]byte("block/0"))
	require.NoError(t, err)
	require.False(t, ok)
}
