package abootimg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetErrors(t *testing.T) {
	assert.Equal(t, []string{}, GetErrors(nil))
	assert.Equal(t, []string{"plain"}, GetErrors(errors.New("plain")))

	err := eMsg(ErrShortRead, "reading kernel")
	assert.Equal(t, []string{"reading kernel: unexpected end of input", "unexpected end of input"}, GetErrors(err))
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestErrorsSurviveWrapping(t *testing.T) {
	err := eMsg(&UnknownVersionError{Pos: 8, Value: 9}, "reading vendor boot image header")

	var versionErr *UnknownVersionError
	assert.ErrorAs(t, err, &versionErr)
	assert.Equal(t, uint32(9), versionErr.Value)
	assert.Equal(t, "reading vendor boot image header: unknown header version 9 at 0x8", err.Error())
}

func TestCString(t *testing.T) {
	assert.Equal(t, []byte("abc"), CString([]byte("abc\x00def")))
	assert.Equal(t, []byte("abc"), CString([]byte("abc")))
	assert.Empty(t, CString([]byte("\x00abc")))
	assert.Empty(t, CString(nil))
}

func TestPadding(t *testing.T) {
	tests := []struct {
		size, page, want int64
	}{
		{0, 2048, 0},
		{1, 2048, 2047},
		{1660, 2048, 388},
		{2048, 2048, 0},
		{2049, 2048, 2047},
		{1580, 4096, 2516},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, padding(tt.size, tt.page), "padding(%d, %d)", tt.size, tt.page)
		assert.Equal(t, tt.size+tt.want, alignUp(tt.size, tt.page))
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []uint32{1, 2, 512, 2048, 4096, 1 << 31} {
		assert.True(t, isPowerOfTwo(n), n)
	}
	for _, n := range []uint32{0, 3, 1000, 4097} {
		assert.False(t, isPowerOfTwo(n), n)
	}
}

func TestEncodeFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeFields(&buf, "test", uint32(1), &rawTrailerV2{DtbSize: 2}))
	assert.Equal(t, 4+12, buf.Len())

	err := encodeFields(&buf, "test", 42)
	assert.ErrorContains(t, err, "encoding test")
}
