package abootimg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/hashicorp/errwrap"
)

// eMsg wraps err with a description of what was being done when it occurred.
// The result still matches the original error with errors.Is and errors.As.
func eMsg(err error, msg string) error {
	return errwrap.Wrapf(msg+": {{err}}", err)
}

// GetErrors returns the wrapped errors from one error: the context first,
// then the cause.
func GetErrors(err error) []string {
	if err != nil {
		w, ok := err.(errwrap.Wrapper)
		if !ok {
			return []string{err.Error()}
		}

		wrapped := w.WrappedErrors()
		return []string{wrapped[0].Error(), wrapped[1].Error()}
	}

	return []string{}
}

// readFields reads little-endian fixed-size data, mapping truncated input to
// ErrShortRead.
func readFields(r io.Reader, what string, data any) error {
	err := binary.Read(r, binary.LittleEndian, data)
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrShortRead
	}

	return eMsg(err, "reading "+what)
}

// checkMagic reads the magic at the start of a header and fails on a mismatch
// before the rest of the header is read. The returned reader yields the whole
// header again, magic included.
func checkMagic(r io.Reader, what string, want [BootMagicSize]byte) (io.Reader, error) {
	var magic [BootMagicSize]byte
	if err := readFields(r, what+" magic", &magic); err != nil {
		return nil, err
	}

	if magic != want {
		return nil, &BadMagicError{Pos: 0, Expected: want[:], Found: magic[:]}
	}

	return io.MultiReader(bytes.NewReader(magic[:]), r), nil
}

// encodeFields appends little-endian fixed-size data to buf.
func encodeFields(buf *bytes.Buffer, what string, data ...any) error {
	for _, d := range data {
		if err := binary.Write(buf, binary.LittleEndian, d); err != nil {
			return eMsg(err, "encoding "+what)
		}
	}

	return nil
}

// writeAll writes buf in a single call, mapping short writes to ErrShortWrite.
func writeAll(w io.Writer, buf []byte, what string) (int64, error) {
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), eMsg(err, "writing "+what)
	}

	if n != len(buf) {
		return int64(n), eMsg(ErrShortWrite, "writing "+what)
	}

	return int64(n), nil
}

// CString returns b up to, but not including, the first NUL byte.
func CString(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}

	return b
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// padding returns the number of bytes needed to fill size up to a multiple of
// pageSize, which must be a power of two.
func padding(size int64, pageSize int64) int64 {
	pageMask := pageSize - 1
	return (pageSize - (size & pageMask)) & pageMask
}

// alignUp rounds size up to the next multiple of pageSize.
func alignUp(size int64, pageSize int64) int64 {
	return size + padding(size, pageSize)
}
