package ecs150fs

import (
	"fmt"
	"io"
	"os"
)

// validName reports whether name is a legal ECS150FS filename: non-empty and
// strictly shorter than FilenameLen so a NUL terminator always fits
// (spec.md §4.3).
func validName(name string) bool {
	return len(name) > 0 && len(name) < FilenameLen
}

// findEntry returns the index of the entry named name, or -1 if none matches.
func (fsys *FS) findEntry(name string) int {
	for i := 0; i < FileMaxCount; i++ {
		e := fsys.root.entry(i)
		if !e.empty() && e.name() == name {
			return i
		}
	}
	return -1
}

// Create adds an empty file named name to the root directory (spec.md §4.3).
func (fsys *FS) Create(name string) error {
	return asError(fsys.create(name))
}

func (fsys *FS) create(name string) fsResult {
	if fsys.device == nil {
		return frNotMounted
	}
	if !validName(name) {
		return frBadArgument
	}
	if fsys.findEntry(name) >= 0 {
		return frNameConflict
	}
	for i := 0; i < FileMaxCount; i++ {
		e := fsys.root.entry(i)
		if e.empty() {
			e.setName(name)
			e.setFileSize(0)
			e.setDataStart(fatEOC)
			fsys.dirty = true
			fsys.log.Debug("created file", "name", name, "slot", i)
			return frOK
		}
	}
	return frResourceExhausted
}

// Delete removes the file named name, freeing its FAT chain. It fails if any
// open descriptor still references the file (spec.md §4.3).
func (fsys *FS) Delete(name string) error {
	return asError(fsys.delete(name))
}

func (fsys *FS) delete(name string) fsResult {
	if fsys.device == nil {
		return frNotMounted
	}
	if !validName(name) {
		return frBadArgument
	}
	idx := fsys.findEntry(name)
	if idx < 0 {
		return frNotFound
	}
	for i := range fsys.fds {
		if !fsys.fds[i].empty() && fsys.fds[i].entryIndex == idx {
			return frBusy
		}
	}
	e := fsys.root.entry(idx)
	fsys.freeChain(e.dataStart())
	e.clearName()
	e.setFileSize(0)
	e.setDataStart(fatEOC)
	fsys.dirty = true
	fsys.log.Debug("deleted file", "name", name, "slot", idx)
	return frOK
}

// Ls prints one line per file in the root directory to standard output, per
// spec.md §6.
func (fsys *FS) Ls() error {
	return fsys.fprintLs(os.Stdout)
}

func (fsys *FS) fprintLs(w io.Writer) error {
	if fsys.device == nil {
		return asError(frNotMounted)
	}
	if _, err := fmt.Fprintln(w, "FS Ls:"); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}
	for i := 0; i < FileMaxCount; i++ {
		e := fsys.root.entry(i)
		if e.empty() {
			continue
		}
		_, err := fmt.Fprintf(w, "file: %s, size: %d, data_blk: %d\n", e.name(), e.fileSize(), e.dataStart())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
		}
	}
	return nil
}
