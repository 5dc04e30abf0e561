package abootimg

import (
	"errors"
	"fmt"
)

// Sentinel errors. Errors returned by this package wrap these, so callers
// should test for them with errors.Is.
var (
	ErrShortRead       = errors.New("unexpected end of input")
	ErrShortWrite      = errors.New("short write")
	ErrInvalidPageSize = errors.New("page size is not a power of two")
	ErrBadEntrySize    = errors.New("vendor ramdisk table entry size too small")
	ErrBadTableSize    = errors.New("vendor ramdisk table entries exceed table size")
)

// BadMagicError is returned when the magic bytes do not identify a supported
// image type.
type BadMagicError struct {
	Pos      int64
	Expected []byte
	Found    []byte
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("bad magic at 0x%x: expected %q, found %q", e.Pos, e.Expected, e.Found)
}

// UnknownVersionError is returned when the header version word is not one of
// the versions supported for the detected magic.
type UnknownVersionError struct {
	Pos   int64
	Value uint32
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown header version %d at 0x%x", e.Value, e.Pos)
}

// HeaderSizeError is returned when the embedded header_size field disagrees
// with the fixed size of the detected header variant.
type HeaderSizeError struct {
	Variant  string
	Expected uint32
	Found    uint32
}

func (e *HeaderSizeError) Error() string {
	return fmt.Sprintf("%s header size mismatch: expected %d, found %d", e.Variant, e.Expected, e.Found)
}
