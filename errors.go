package ecs150fs

import "errors"

// fsResult is the internal result-code type threaded through the lower-level
// fs_* style methods, mirroring the teacher's fileResult: a small closed enum
// compared with ==, only turned into an error at the exported API boundary.
type fsResult int

const (
	frOK fsResult = iota
	frNotMounted
	frAlreadyMounted
	frDeviceFailure
	frBadImage
	frBadArgument
	frResourceExhausted
	frNameConflict
	frNotFound
	frBusy
)

func (fr fsResult) Error() string {
	switch fr {
	case frOK:
		return "ok"
	case frNotMounted:
		return "ecs150fs: not mounted"
	case frAlreadyMounted:
		return "ecs150fs: already mounted"
	case frDeviceFailure:
		return "ecs150fs: block device failure"
	case frBadImage:
		return "ecs150fs: bad filesystem image"
	case frBadArgument:
		return "ecs150fs: bad argument"
	case frResourceExhausted:
		return "ecs150fs: resource exhausted"
	case frNameConflict:
		return "ecs150fs: name already exists"
	case frNotFound:
		return "ecs150fs: not found"
	case frBusy:
		return "ecs150fs: busy"
	default:
		return "ecs150fs: unknown error"
	}
}

// Sentinel errors for the §7 error taxonomy classes. Every fsResult other
// than frOK wraps exactly one of these so callers can use errors.Is without
// depending on the unexported fsResult type.
var (
	ErrNotMounted        = errors.New("ecs150fs: not mounted")
	ErrAlreadyMounted    = errors.New("ecs150fs: already mounted")
	ErrDeviceFailure     = errors.New("ecs150fs: block device failure")
	ErrBadImage          = errors.New("ecs150fs: bad filesystem image")
	ErrBadArgument       = errors.New("ecs150fs: bad argument")
	ErrResourceExhausted = errors.New("ecs150fs: resource exhausted")
	ErrNameConflict      = errors.New("ecs150fs: name already exists")
	ErrNotFound          = errors.New("ecs150fs: not found")
	ErrBusy              = errors.New("ecs150fs: busy")
)

// wrappedResult pairs an fsResult with its sentinel so errors.Is(err, ErrX)
// works while fr.Error() still gives the precise message.
type wrappedResult struct {
	fr fsResult
}

func (w wrappedResult) Error() string { return w.fr.Error() }

func (w wrappedResult) Unwrap() error {
	switch w.fr {
	case frNotMounted:
		return ErrNotMounted
	case frAlreadyMounted:
		return ErrAlreadyMounted
	case frDeviceFailure:
		return ErrDeviceFailure
	case frBadImage:
		return ErrBadImage
	case frBadArgument:
		return ErrBadArgument
	case frResourceExhausted:
		return ErrResourceExhausted
	case frNameConflict:
		return ErrNameConflict
	case frNotFound:
		return ErrNotFound
	case frBusy:
		return ErrBusy
	default:
		return nil
	}
}

// asError converts an fsResult into an error, or nil for frOK.
func asError(fr fsResult) error {
	if fr == frOK {
		return nil
	}
	return wrappedResult{fr}
}
