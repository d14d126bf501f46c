package ecs150fs

// chainEnd walks the FAT chain starting at start and returns the index of the
// terminating block (the last slot equal to fatEOC), or fatEOC itself if
// start is fatEOC (spec.md §4.2). The walk is bounded by dataBlockCount
// steps (a chain can never be longer than the number of data blocks),
// relying on the no-cycle invariant.
func (fsys *FS) chainEnd(start fatIndex) fatIndex {
	if start == fatEOC {
		return fatEOC
	}
	cur := start
	for steps := 0; steps < int(fsys.sb.dataBlockCount()); steps++ {
		next := fsys.fat[cur]
		if next == fatEOC {
			return cur
		}
		cur = next
	}
	// Unreachable under the chain invariant; returning the sentinel keeps
	// callers well-defined instead of looping forever on a corrupt image.
	return fatEOC
}

// chainLocateResult is the outcome of chainLocate: either a valid block plus
// a byte offset within it, or beyondEnd if the walk would step past fatEOC.
type chainLocateResult struct {
	block      fatIndex
	blockOff   uint32
	beyondEnd  bool
}

// chainLocate walks forward offsetBytes/BlockSize links from start and
// returns the block reached plus the remaining byte offset within it
// (spec.md §4.2).
func (fsys *FS) chainLocate(start fatIndex, offsetBytes uint32) chainLocateResult {
	nLinks := offsetBytes / BlockSize
	cur := start
	for i := uint32(0); i < nLinks; i++ {
		if cur == fatEOC {
			return chainLocateResult{beyondEnd: true}
		}
		cur = fsys.fat[cur]
	}
	if cur == fatEOC {
		return chainLocateResult{beyondEnd: true}
	}
	return chainLocateResult{block: cur, blockOff: offsetBytes % BlockSize}
}

// allocate scans the FAT ascending from index 1 (slot 0 is reserved) for the
// first free slot,
// marks it as the new chain terminator, and links it to entry's chain
// (spec.md §4.2's first-fit ascending policy). Returns frResourceExhausted
// if no free block remains.
func (fsys *FS) allocate(entry dirEntry) (fatIndex, fsResult) {
	free := fatIndex(0)
	found := false
	for i := 1; i < int(fsys.sb.dataBlockCount()); i++ { // slot 0 is reserved, never allocated
		if fsys.fat[i] == fatFree {
			free = fatIndex(i)
			found = true
			break
		}
	}
	if !found {
		return 0, frResourceExhausted
	}
	fsys.fat[free] = fatEOC
	if entry.dataStart() == fatEOC {
		entry.setDataStart(free)
	} else {
		end := fsys.chainEnd(entry.dataStart())
		fsys.fat[end] = free
	}
	fsys.dirty = true
	fsys.log.Debug("allocated block", "index", free)
	return free, frOK
}

// freeChain walks the chain from start, clearing each visited slot
// (including the terminator) back to fatFree. A no-op if start is fatEOC.
func (fsys *FS) freeChain(start fatIndex) {
	if start == fatEOC {
		return
	}
	cur := start
	for steps := 0; steps < int(fsys.sb.dataBlockCount()); steps++ {
		next := fsys.fat[cur]
		fsys.fat[cur] = fatFree
		if next == fatEOC {
			break
		}
		cur = next
	}
	fsys.dirty = true
}
