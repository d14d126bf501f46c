package ecs150fs

import (
	"encoding/binary"
	"testing"

	"github.com/soypat/ecs150fs/internal/blockdev"
)

// buildImage builds a freshly formatted in-memory volume with dataBlocks
// data blocks, grounded on soypat-fat/fat_test.go's DefaultFATByteBlocks /
// fatInit pattern of pre-seeding a BlockDevice's backing buffer with a valid
// layout rather than running a separate mkfs pass (image-creation tooling is
// out of scope per spec.md §1; this is test scaffolding only). It panics on
// the (practically unreachable) internal write failures of a fresh in-memory
// device, so it can be shared by both *testing.T tests and Example functions.
func buildImage(dataBlocks uint16) *blockdev.Memory {
	fatBlocks := uint16((uint32(dataBlocks)*2 + BlockSize - 1) / BlockSize)
	rootIdx := fatBlocks + 1
	dataStart := rootIdx + 1
	total := uint32(1) + uint32(fatBlocks) + 1 + uint32(dataBlocks)
	if total > 0xFFFF {
		panic("buildImage: total blocks overflows uint16")
	}

	dev := blockdev.NewMemory(uint16(total))

	var sb superblock
	sb.setSignature()
	sb.setBlockCount(uint16(total))
	sb.setRootDirIndex(rootIdx)
	sb.setDataStartIndex(dataStart)
	sb.setDataBlockCount(dataBlocks)
	sb.setFatBlockCount(fatBlocks)
	must(dev.WriteBlock(0, sb.data[:]))

	// FAT block 1 starts with slot 0 reserved as EOC; all other slots free.
	var fatBlockBuf [BlockSize]byte
	binary.LittleEndian.PutUint16(fatBlockBuf[0:2], fatEOC)
	must(dev.WriteBlock(1, fatBlockBuf[:]))
	for i := uint16(2); i < 1+fatBlocks; i++ {
		var empty [BlockSize]byte
		must(dev.WriteBlock(i, empty[:]))
	}

	var rootBuf [BlockSize]byte
	must(dev.WriteBlock(rootIdx, rootBuf[:]))
	return dev
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func makeImage(t testing.TB, dataBlocks uint16) *blockdev.Memory {
	t.Helper()
	return buildImage(dataBlocks)
}

func mustMount(t testing.TB, dev blockdev.BlockDevice) *FS {
	t.Helper()
	var fsys FS
	if err := fsys.MountDevice(dev); err != nil {
		t.Fatalf("MountDevice: %v", err)
	}
	return &fsys
}
