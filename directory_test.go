package ecs150fs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// S2: create/delete.
func TestCreateDelete(t *testing.T) {
	dev := makeImage(t, 64)
	fsys := mustMount(t, dev)
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("a.txt"))
	require.ErrorIs(t, fsys.Create("a.txt"), ErrNameConflict)

	var buf bytes.Buffer
	require.NoError(t, fsys.fprintLs(&buf))
	require.Equal(t, "FS Ls:\nfile: a.txt, size: 0, data_blk: 65535\n", buf.String())

	require.NoError(t, fsys.Delete("a.txt"))
	buf.Reset()
	require.NoError(t, fsys.fprintLs(&buf))
	require.Equal(t, "FS Ls:\n", buf.String())
}

// S6: delete refuses while a descriptor is open.
func TestDeleteBusy(t *testing.T) {
	dev := makeImage(t, 64)
	fsys := mustMount(t, dev)
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("a"))
	fp, err := fsys.Open("a")
	require.NoError(t, err)
	require.ErrorIs(t, fsys.Delete("a"), ErrBusy)
	require.NoError(t, fp.Close())
	require.NoError(t, fsys.Delete("a"))
}

func TestCreateRejectsBadNames(t *testing.T) {
	dev := makeImage(t, 64)
	fsys := mustMount(t, dev)
	defer fsys.Unmount()

	require.ErrorIs(t, fsys.Create(""), ErrBadArgument)
	require.ErrorIs(t, fsys.Create("0123456789abcdef"), ErrBadArgument) // 16 bytes, no room for NUL
	require.NoError(t, fsys.Create("0123456789abcde"))                 // 15 bytes fits
}

func TestDirectoryFull(t *testing.T) {
	dev := makeImage(t, 64)
	fsys := mustMount(t, dev)
	defer fsys.Unmount()

	for i := 0; i < FileMaxCount; i++ {
		require.NoError(t, fsys.Create(string(rune('a'+i%26))+string(rune('0'+i/26))))
	}
	require.ErrorIs(t, fsys.Create("overflow"), ErrResourceExhausted)
}

// Idempotent close / recreate after delete (property 5).
func TestRecreateAfterDelete(t *testing.T) {
	dev := makeImage(t, 64)
	fsys := mustMount(t, dev)
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("f"))
	require.NoError(t, fsys.Delete("f"))
	require.NoError(t, fsys.Create("f"))

	fp, err := fsys.Open("f")
	require.NoError(t, err)
	require.NoError(t, fp.Close())
	require.ErrorIs(t, fp.Close(), ErrBadArgument)
}
