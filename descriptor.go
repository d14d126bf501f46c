package ecs150fs

// File is a handle returned by Open: a reference to one slot of the
// descriptor table (spec.md §4.4), carrying its own cursor.
type File struct {
	fsys *FS
	fd   int
}

// Open opens the named file for reading and writing, returning a *File
// bound to the lowest-numbered free descriptor slot (spec.md §4.4).
func (fsys *FS) Open(name string) (*File, error) {
	fd, fr := fsys.open(name)
	if fr != frOK {
		return nil, asError(fr)
	}
	return &File{fsys: fsys, fd: fd}, nil
}

func (fsys *FS) open(name string) (int, fsResult) {
	if fsys.device == nil {
		return -1, frNotMounted
	}
	if !validName(name) {
		return -1, frBadArgument
	}
	idx := fsys.findEntry(name)
	if idx < 0 {
		return -1, frNotFound
	}
	for fd := 0; fd < OpenMaxCount; fd++ {
		if fsys.fds[fd].empty() {
			fsys.fds[fd] = descriptor{entryIndex: idx, cursor: 0}
			return fd, frOK
		}
	}
	return -1, frResourceExhausted
}

// validate checks fp refers to a still-open descriptor on a still-mounted
// volume, returning the descriptor and its directory entry.
func (fp *File) validate() (*descriptor, dirEntry, fsResult) {
	if fp.fsys == nil || fp.fsys.device == nil {
		return nil, dirEntry{}, frNotMounted
	}
	if fp.fd < 0 || fp.fd >= OpenMaxCount || fp.fsys.fds[fp.fd].empty() {
		return nil, dirEntry{}, frBadArgument
	}
	d := &fp.fsys.fds[fp.fd]
	return d, fp.fsys.root.entry(d.entryIndex), frOK
}

// Close releases fp's descriptor slot.
func (fp *File) Close() error {
	d, _, fr := fp.validate()
	if fr != frOK {
		return asError(fr)
	}
	d.entryIndex = fdEmpty
	d.cursor = 0
	return nil
}

// Stat returns the current size in bytes of the file fp refers to.
func (fp *File) Stat() (int64, error) {
	_, e, fr := fp.validate()
	if fr != frOK {
		return -1, asError(fr)
	}
	return int64(e.fileSize()), nil
}

// Seek sets fp's cursor to offset. offset may equal the file's current size
// (to support appends), but not exceed it (spec.md §4.4 and §9 Open Questions).
func (fp *File) Seek(offset int64) error {
	d, e, fr := fp.validate()
	if fr != frOK {
		return asError(fr)
	}
	if offset < 0 || uint64(offset) > uint64(e.fileSize()) {
		return asError(frBadArgument)
	}
	d.cursor = uint32(offset)
	return nil
}

// Tell returns fp's current cursor position.
func (fp *File) Tell() (int64, error) {
	d, _, fr := fp.validate()
	if fr != frOK {
		return -1, asError(fr)
	}
	return int64(d.cursor), nil
}
