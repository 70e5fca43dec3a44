package seqstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMMapBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")

	b, err := OpenMMap(path)
	require.NoError(t, err)

	values, inits, err := b.Load()
	require.NoError(t, err)
	require.Zero(t, values)
	require.Zero(t, inits)

	require.NoError(t, b.Save(0x1122334455667788, 0x8877665544332211))
	require.NoError(t, b.Close())

	b2, err := OpenMMap(path)
	require.NoError(t, err)
	defer b2.Close()

	values, inits, err = b2.Load()
	require.NoError(t, err)
	require.Equal(t, uint64(0x1122334455667788), values)
	require.Equal(t, uint64(0x8877665544332211), inits)
}

func TestLevelDBBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.ldb")

	b, err := OpenLevelDB(path)
	require.NoError(t, err)

	values, inits, err := b.Load()
	require.NoError(t, err)
	require.Zero(t, values)
	require.Zero(t, inits)

	require.NoError(t, b.Save(1, 2))
	require.NoError(t, b.Save(3, 4))

	values, inits, err = b.Load()
	require.NoError(t, err)
	require.Equal(t, uint64(3), values)
	require.Equal(t, uint64(4), inits)

	hist, err := b.History()
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Equal(t, uint64(1), hist[0].Values)
	require.Equal(t, uint64(3), hist[1].Values)

	require.NoError(t, b.Close())
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open(Kind("bogus"), filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
}
