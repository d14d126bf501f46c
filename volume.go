// Package ecs150fs implements a small FAT-style single-container filesystem
// library: a fixed-size superblock, FAT, and root directory laid out over a
// block device, with a POSIX-like mount/create/open/read/write/close API.
//
// The on-disk format, invariants, and API semantics follow the ECS150FS
// specification; see SPEC_FULL.md in the repository for the full write-up.
package ecs150fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/soypat/ecs150fs/internal/blockdev"
)

// FS is a mounted ECS150FS volume. The zero value is not mounted; obtain one
// via Mount.
type FS struct {
	device blockdev.BlockDevice
	sb     superblock
	fat    []uint16 // length fatBlockCount()*fatEntriesPerBlock
	root   rootDir
	fds    [OpenMaxCount]descriptor
	dirty  bool // FAT or root directory modified since mount/last flush
	log    *slog.Logger
}

// descriptor is one slot of the open-file table (spec.md §4.4).
type descriptor struct {
	entryIndex int // index into root directory entries, or fdEmpty
	cursor     uint32
}

func (d *descriptor) empty() bool { return d.entryIndex == fdEmpty }

// MountOption configures Mount. The zero set of options reproduces the plain
// spec.md behavior.
type MountOption func(*FS)

// WithLogger attaches a structured logger used for mount/unmount/allocation
// tracing. Logging never changes control flow; it is purely diagnostic.
func WithLogger(log *slog.Logger) MountOption {
	return func(fsys *FS) { fsys.log = log }
}

// Mount opens diskname as a block device and mounts an ECS150FS volume onto
// fsys, per spec.md §4.1. fsys must not already be mounted (spec.md §7's
// already-mounted case): call Unmount first to reuse a handle. It fails if
// the device cannot be opened, or the signature/geometry checks fail.
func (fsys *FS) Mount(diskname string, opts ...MountOption) error {
	dev, err := blockdev.Open(diskname)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}
	if err := fsys.MountDevice(dev, opts...); err != nil {
		dev.Close()
		return err
	}
	return nil
}

// MountDevice mounts an ECS150FS volume on an already-open BlockDevice. This
// is the low-level entry point Mount wraps; tests use it directly against
// internal/blockdev.Memory so they never touch the filesystem.
func (fsys *FS) MountDevice(dev blockdev.BlockDevice, opts ...MountOption) error {
	if fsys.device != nil {
		return asError(frAlreadyMounted)
	}
	if fsys.log == nil {
		fsys.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for _, opt := range opts {
		opt(fsys)
	}
	fr := fsys.mountVolume(dev)
	if fr != frOK {
		return asError(fr)
	}
	return nil
}

func (fsys *FS) mountVolume(dev blockdev.BlockDevice) fsResult {
	var sb superblock
	if err := dev.ReadBlock(0, sb.data[:]); err != nil {
		fsys.log.Error("mount: superblock read failed", "err", err)
		return frDeviceFailure
	}
	if !sb.signatureOK() {
		fsys.log.Error("mount: bad signature")
		return frBadImage
	}
	if dev.BlockCount() != sb.blockCount() {
		fsys.log.Error("mount: block count mismatch",
			"device", dev.BlockCount(), "superblock", sb.blockCount())
		return frBadImage
	}
	dataBlocks := sb.dataBlockCount()
	wantFATBlocks := (uint32(dataBlocks)*2 + BlockSize - 1) / BlockSize
	if uint32(sb.fatBlockCount()) != wantFATBlocks {
		return frBadImage
	}
	if sb.rootDirIndex() != sb.fatBlockCount()+1 {
		return frBadImage
	}
	if sb.dataStartIndex() != sb.rootDirIndex()+1 {
		return frBadImage
	}
	wantBlockCount := uint32(1) + uint32(sb.fatBlockCount()) + 1 + uint32(dataBlocks)
	if uint32(sb.blockCount()) != wantBlockCount {
		return frBadImage
	}

	fat := make([]uint16, int(sb.fatBlockCount())*fatEntriesPerBlock)
	var blockBuf [BlockSize]byte
	for i := uint16(0); i < sb.fatBlockCount(); i++ {
		if err := dev.ReadBlock(1+i, blockBuf[:]); err != nil {
			fsys.log.Error("mount: FAT block read failed", "block", i, "err", err)
			return frDeviceFailure
		}
		for j := 0; j < fatEntriesPerBlock; j++ {
			fat[int(i)*fatEntriesPerBlock+j] = binary.LittleEndian.Uint16(blockBuf[j*2 : j*2+2])
		}
	}

	var root rootDir
	if err := dev.ReadBlock(sb.rootDirIndex(), root.data[:]); err != nil {
		fsys.log.Error("mount: root directory read failed", "err", err)
		return frDeviceFailure
	}

	fsys.device = dev
	fsys.sb = sb
	fsys.fat = fat
	fsys.root = root
	fsys.dirty = false
	for i := range fsys.fds {
		fsys.fds[i] = descriptor{entryIndex: fdEmpty}
	}
	fsys.log.Debug("mounted",
		"blocks", sb.blockCount(), "data_blocks", dataBlocks, "fat_blocks", sb.fatBlockCount())
	return frOK
}

// Unmount flushes the in-memory FAT and root directory back to the device
// (spec.md mandates this), closes the device, and releases in-memory state.
// Open descriptors at unmount time are silently discarded.
func (fsys *FS) Unmount() error {
	if fsys.device == nil {
		return asError(frNotMounted)
	}
	var flushErr error
	if err := fsys.flush(); err != nil {
		flushErr = err
	}
	closeErr := fsys.device.Close()
	fsys.device = nil
	fsys.fat = nil
	fsys.root = rootDir{}
	fsys.sb = superblock{}
	for i := range fsys.fds {
		fsys.fds[i] = descriptor{entryIndex: fdEmpty}
	}
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %v", ErrDeviceFailure, closeErr)
	}
	return nil
}

// flush writes the in-memory FAT and root directory back to their blocks.
func (fsys *FS) flush() error {
	if !fsys.dirty {
		return nil
	}
	var blockBuf [BlockSize]byte
	for i := uint16(0); i < fsys.sb.fatBlockCount(); i++ {
		for j := 0; j < fatEntriesPerBlock; j++ {
			idx := int(i)*fatEntriesPerBlock + j
			binary.LittleEndian.PutUint16(blockBuf[j*2:j*2+2], fsys.fat[idx])
		}
		if err := fsys.device.WriteBlock(1+i, blockBuf[:]); err != nil {
			fsys.log.Error("unmount: FAT flush failed", "block", i, "err", err)
			return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
		}
	}
	if err := fsys.device.WriteBlock(fsys.sb.rootDirIndex(), fsys.root.data[:]); err != nil {
		fsys.log.Error("unmount: root directory flush failed", "err", err)
		return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}
	return nil
}

// Info prints a fixed-format human-readable summary of the mounted volume to
// standard output, per spec.md §6.
func (fsys *FS) Info() error {
	return fsys.fprintInfo(os.Stdout)
}

// physBlock converts a 0-based data-region FAT index into a physical block
// address (spec.md §3: "physical block address = data_start_index + fat_index").
func (fsys *FS) physBlock(idx fatIndex) uint16 {
	return fsys.sb.dataStartIndex() + idx
}

func (fsys *FS) fprintInfo(w io.Writer) error {
	if fsys.device == nil {
		return asError(frNotMounted)
	}
	freeFAT := 0
	for _, e := range fsys.fat[:fsys.sb.dataBlockCount()] {
		if e == fatFree {
			freeFAT++
		}
	}
	freeRoot := 0
	for i := 0; i < FileMaxCount; i++ {
		if fsys.root.entry(i).empty() {
			freeRoot++
		}
	}
	_, err := fmt.Fprintf(w,
		"FS Info:\ntotal_blk_count=%d\nfat_blk_count=%d\nrdir_blk=%d\ndata_blk=%d\ndata_blk_count=%d\n"+
			"fat_free_ratio=%d/%d\nrdir_free_ratio=%d/%d\n",
		fsys.sb.blockCount(), fsys.sb.fatBlockCount(), fsys.sb.rootDirIndex(),
		fsys.sb.dataStartIndex(), fsys.sb.dataBlockCount(),
		freeFAT, fsys.sb.dataBlockCount(), freeRoot, FileMaxCount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}
	return nil
}
