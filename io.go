package ecs150fs

import (
	"fmt"
	"io"
)

// Read reads up to len(buf) bytes from fp into buf, starting at fp's cursor,
// advancing the cursor by exactly the number of bytes returned (spec.md
// §4.5). It implements io.Reader: a read that hits end-of-file with no bytes
// transferred returns (0, io.EOF).
//
// The transfer proceeds over the file's FAT chain in three phases: a head
// partial block (bounced through a scratch buffer when the cursor isn't
// block-aligned), zero or more full aligned blocks read directly into buf,
// and a tail partial block (also bounced) when the read doesn't end on a
// block boundary.
func (fp *File) Read(buf []byte) (int, error) {
	d, e, fr := fp.validate()
	if fr != frOK {
		return 0, asError(fr)
	}
	fsys := fp.fsys
	size := int64(e.fileSize())
	cursor := int64(d.cursor)
	remaining := size - cursor
	if remaining < 0 {
		remaining = 0
	}
	n := len(buf)
	if int64(n) > remaining {
		n = int(remaining)
	}
	if n == 0 {
		return 0, io.EOF
	}

	loc := fsys.chainLocate(e.dataStart(), uint32(cursor))
	if loc.beyondEnd {
		// The chain-length invariant (file_size <= blocks*BlockSize)
		// guarantees n bytes are reachable from cursor; reaching here means
		// the on-disk chain is shorter than file_size claims.
		return 0, asError(frBadImage)
	}
	blk, blkOff := loc.block, loc.blockOff

	var bounce [BlockSize]byte
	written := 0
	for written < n {
		toCopy := min(BlockSize-int(blkOff), n-written)
		phys := fsys.physBlock(blk)
		if blkOff == 0 && toCopy == BlockSize {
			if err := fsys.device.ReadBlock(phys, buf[written:written+toCopy]); err != nil {
				d.cursor = uint32(cursor) + uint32(written)
				return written, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
			}
		} else {
			if err := fsys.device.ReadBlock(phys, bounce[:]); err != nil {
				d.cursor = uint32(cursor) + uint32(written)
				return written, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
			}
			copy(buf[written:written+toCopy], bounce[blkOff:int(blkOff)+toCopy])
		}
		written += toCopy
		if written < n {
			blk = fsys.fat[blk]
			blkOff = 0
		}
	}
	d.cursor = uint32(cursor) + uint32(written)
	return written, nil
}

// Write writes len(buf) bytes to fp starting at its cursor, returning the
// number of bytes actually written: a short write (fewer than len(buf))
// means the device ran out of free blocks partway through, which is not an
// error (spec.md §4.6). A block device failure is returned as an error
// wrapping ErrDeviceFailure, together with the bytes written before it. The
// cursor advances by the bytes actually written, and the file's size grows if
// the new cursor exceeds it.
//
// Like Read, the transfer proceeds in head-partial / aligned-middle /
// tail-partial phases, but a full block is written directly from buf only
// when the destination block already exists or was just allocated; running
// out of free blocks stops the transfer at the last fully written block.
func (fp *File) Write(buf []byte) (int, error) {
	d, e, fr := fp.validate()
	if fr != frOK {
		return 0, asError(fr)
	}
	fsys := fp.fsys
	n := len(buf)
	if n == 0 {
		return 0, nil
	}

	if e.dataStart() == fatEOC {
		if _, fr := fsys.allocate(e); fr != frOK {
			return 0, nil // disk full before a single byte could be placed
		}
	}

	loc := fsys.chainLocate(e.dataStart(), d.cursor)
	blk, blkOff := loc.block, loc.blockOff
	if loc.beyondEnd {
		nb, fr := fsys.allocate(e)
		if fr != frOK {
			return 0, nil
		}
		blk, blkOff = nb, 0
	}

	var bounce [BlockSize]byte
	var writeErr error
	written := 0
	for written < n {
		toCopy := min(BlockSize-int(blkOff), n-written)
		phys := fsys.physBlock(blk)
		full := blkOff == 0 && toCopy == BlockSize
		var ioErr error
		if full {
			ioErr = fsys.device.WriteBlock(phys, buf[written:written+toCopy])
		} else {
			if ioErr = fsys.device.ReadBlock(phys, bounce[:]); ioErr == nil {
				copy(bounce[blkOff:int(blkOff)+toCopy], buf[written:written+toCopy])
				ioErr = fsys.device.WriteBlock(phys, bounce[:])
			}
		}
		if ioErr != nil {
			fsys.log.Error("write: block I/O failed", "block", phys, "err", ioErr)
			writeErr = fmt.Errorf("%w: %v", ErrDeviceFailure, ioErr)
			break
		}
		written += toCopy
		if written >= n {
			break
		}
		next := fsys.fat[blk]
		if next == fatEOC {
			nb, fr := fsys.allocate(e)
			if fr != frOK {
				break // disk full: report the short write, not an error
			}
			next = nb
		}
		blk, blkOff = next, 0
	}

	if written > 0 {
		fsys.dirty = true
		newCursor := d.cursor + uint32(written)
		d.cursor = newCursor
		if newCursor > e.fileSize() {
			e.setFileSize(newCursor)
		}
	}
	return written, writeErr
}
