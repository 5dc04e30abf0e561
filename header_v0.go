package abootimg

import (
	"bytes"
	"io"
)

// HeaderV0 is the Android boot image header for versions 0, 1 and 2.
//
// The header version and header size are not stored: they are derived from
// Versioned when the header is written.
//
//	+-------------------------+
//	| boot image header       |
//	| + padding to page size  |
//	+-------------------------+
//	| kernel                  |
//	+-------------------------+
//	| ramdisk                 |
//	+-------------------------+
//	| second stage bootloader |
//	+-------------------------+
//	| recovery dtbo/acpio (1+)|
//	+-------------------------+
//	| dtb (2)                 |
//	+-------------------------+
//
// Every section is padded to the page size.
type HeaderV0 struct {
	KernelSize           uint32
	KernelAddr           uint32
	RamdiskSize          uint32
	RamdiskAddr          uint32
	SecondBootloaderSize uint32
	SecondBootloaderAddr uint32
	TagsAddr             uint32
	// Must be a power of two.
	PageSize       uint32
	OsVersionPatch OsVersionPatch
	BoardName      [BootNameSize]byte
	CmdlinePart1   [BootArgsSize]byte
	HashDigest     [BootIDSize]byte
	CmdlinePart2   [BootExtraArgsSize]byte

	// Version-specific fields: nil for version 0, V1Fields or V2Fields.
	Versioned HeaderV0Versioned
}

// HeaderV0Versioned is the version-specific tail of a HeaderV0. It is
// implemented only by V1Fields and V2Fields.
type HeaderV0Versioned interface {
	headerVersion() uint32
	headerSize() uint32
}

// V1Fields are the fields added by version 1.
type V1Fields struct {
	// Recovery DTBO/ACPIO size
	RecoveryDtboSize uint32
	// Recovery DTBO/ACPIO physical load address
	RecoveryDtboAddr uint64
}

func (V1Fields) headerVersion() uint32 { return 1 }
func (V1Fields) headerSize() uint32    { return HeaderV1Size }

// V2Fields are the fields of version 2, a superset of V1Fields.
type V2Fields struct {
	RecoveryDtboSize uint32
	RecoveryDtboAddr uint64
	DtbSize          uint32
	DtbAddr          uint64
}

func (V2Fields) headerVersion() uint32 { return 2 }
func (V2Fields) headerSize() uint32    { return HeaderV2Size }

// ReadHeaderV0 reads a version 0, 1 or 2 boot image header from r, which must
// be positioned at the start of the header.
func ReadHeaderV0(r io.Reader) (*HeaderV0, error) {
	prefix, err := checkMagic(r, "boot image header", BootMagicBytes)
	if err != nil {
		return nil, err
	}

	var raw rawHeaderV0
	if err := readFields(prefix, "boot image header", &raw); err != nil {
		return nil, err
	}

	if raw.HeaderVersion > 2 {
		return nil, &UnknownVersionError{Pos: BootVersionOffset, Value: raw.HeaderVersion}
	}

	if !isPowerOfTwo(raw.PageSize) {
		return nil, eMsg(ErrInvalidPageSize, "validating boot image header")
	}

	hdr := &HeaderV0{
		KernelSize:           raw.KernelSize,
		KernelAddr:           raw.KernelAddr,
		RamdiskSize:          raw.RamdiskSize,
		RamdiskAddr:          raw.RamdiskAddr,
		SecondBootloaderSize: raw.SecondSize,
		SecondBootloaderAddr: raw.SecondAddr,
		TagsAddr:             raw.TagsAddr,
		PageSize:             raw.PageSize,
		OsVersionPatch:       OsVersionPatch(raw.OSVersion),
		BoardName:            raw.Board,
		CmdlinePart1:         raw.Cmdline,
		HashDigest:           raw.ID,
		CmdlinePart2:         raw.ExtraCmdline,
	}

	if raw.HeaderVersion == 0 {
		return hdr, nil
	}

	var v1 rawTrailerV1
	if err := readFields(r, "boot image header v1 fields", &v1); err != nil {
		return nil, err
	}

	if raw.HeaderVersion == 1 {
		if v1.HeaderSize != HeaderV1Size {
			return nil, &HeaderSizeError{Variant: "boot v1", Expected: HeaderV1Size, Found: v1.HeaderSize}
		}

		hdr.Versioned = V1Fields{
			RecoveryDtboSize: v1.RecoveryDtboSize,
			RecoveryDtboAddr: v1.RecoveryDtboAddr,
		}
		return hdr, nil
	}

	if v1.HeaderSize != HeaderV2Size {
		return nil, &HeaderSizeError{Variant: "boot v2", Expected: HeaderV2Size, Found: v1.HeaderSize}
	}

	var v2 rawTrailerV2
	if err := readFields(r, "boot image header v2 fields", &v2); err != nil {
		return nil, err
	}

	hdr.Versioned = V2Fields{
		RecoveryDtboSize: v1.RecoveryDtboSize,
		RecoveryDtboAddr: v1.RecoveryDtboAddr,
		DtbSize:          v2.DtbSize,
		DtbAddr:          v2.DtbAddr,
	}
	return hdr, nil
}

// MarshalBinary encodes the header, recomputing the header version and size.
func (h *HeaderV0) MarshalBinary() ([]byte, error) {
	if !isPowerOfTwo(h.PageSize) {
		return nil, eMsg(ErrInvalidPageSize, "encoding boot image header")
	}

	raw := rawHeaderV0{
		Magic:         BootMagicBytes,
		KernelSize:    h.KernelSize,
		KernelAddr:    h.KernelAddr,
		RamdiskSize:   h.RamdiskSize,
		RamdiskAddr:   h.RamdiskAddr,
		SecondSize:    h.SecondBootloaderSize,
		SecondAddr:    h.SecondBootloaderAddr,
		TagsAddr:      h.TagsAddr,
		PageSize:      h.PageSize,
		HeaderVersion: h.HeaderVersion(),
		OSVersion:     uint32(h.OsVersionPatch),
		Board:         h.BoardName,
		Cmdline:       h.CmdlinePart1,
		ID:            h.HashDigest,
		ExtraCmdline:  h.CmdlinePart2,
	}

	fields := []any{&raw}
	switch v := h.Versioned.(type) {
	case V1Fields:
		fields = append(fields, &rawTrailerV1{
			RecoveryDtboSize: v.RecoveryDtboSize,
			RecoveryDtboAddr: v.RecoveryDtboAddr,
			HeaderSize:       v.headerSize(),
		})
	case V2Fields:
		fields = append(fields, &rawTrailerV1{
			RecoveryDtboSize: v.RecoveryDtboSize,
			RecoveryDtboAddr: v.RecoveryDtboAddr,
			HeaderSize:       v.headerSize(),
		}, &rawTrailerV2{
			DtbSize: v.DtbSize,
			DtbAddr: v.DtbAddr,
		})
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderV2Size))
	if err := encodeFields(buf, "boot image header", fields...); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteTo writes the header to out. Only the header itself is written, not
// the padding that follows it or any payload.
func (h *HeaderV0) WriteTo(out io.Writer) (int64, error) {
	buf, err := h.MarshalBinary()
	if err != nil {
		return 0, err
	}

	return writeAll(out, buf, "boot image header")
}

// HeaderVersion returns the header version implied by Versioned.
func (h *HeaderV0) HeaderVersion() uint32 {
	if h.Versioned == nil {
		return 0
	}

	return h.Versioned.headerVersion()
}

// HeaderSize returns the encoded size of the header. Version 0 headers do not
// store their size, but it is returned all the same.
func (h *HeaderV0) HeaderSize() uint32 {
	if h.Versioned == nil {
		return HeaderV0Size
	}

	return h.Versioned.headerSize()
}

// RecoveryDtbo returns the recovery DTBO/ACPIO size and load address, if the
// header version has them.
func (h *HeaderV0) RecoveryDtbo() (size uint32, addr uint64, ok bool) {
	switch v := h.Versioned.(type) {
	case V1Fields:
		return v.RecoveryDtboSize, v.RecoveryDtboAddr, true
	case V2Fields:
		return v.RecoveryDtboSize, v.RecoveryDtboAddr, true
	}

	return 0, 0, false
}

// Dtb returns the DTB size and load address of a version 2 header.
func (h *HeaderV0) Dtb() (size uint32, addr uint64, ok bool) {
	if v, isV2 := h.Versioned.(V2Fields); isV2 {
		return v.DtbSize, v.DtbAddr, true
	}

	return 0, 0, false
}

// paddingSize calculates the amount of padding necessary for the header's page size.
func (h *HeaderV0) paddingSize(size uint32) int64 {
	return padding(int64(size), int64(h.PageSize))
}

// KernelPosition returns the kernel's offset in the image.
//
// The header is always given the space of the largest (version 2) header
// before padding; smaller headers leave the remainder as zero padding.
func (h *HeaderV0) KernelPosition() int64 {
	return HeaderV2Size + h.paddingSize(HeaderV2Size)
}

// RamdiskPosition returns the ramdisk's offset in the image.
func (h *HeaderV0) RamdiskPosition() int64 {
	return h.KernelPosition() + int64(h.KernelSize) + h.paddingSize(h.KernelSize)
}

// SecondBootloaderPosition returns the second stage bootloader's offset in the image.
func (h *HeaderV0) SecondBootloaderPosition() int64 {
	return h.RamdiskPosition() + int64(h.RamdiskSize) + h.paddingSize(h.RamdiskSize)
}

// RecoveryDtboPosition returns the recovery DTBO's offset in the image. It is
// only meaningful for version 1 and 2 headers.
func (h *HeaderV0) RecoveryDtboPosition() int64 {
	return h.SecondBootloaderPosition() + int64(h.SecondBootloaderSize) + h.paddingSize(h.SecondBootloaderSize)
}

// DtbPosition returns the DTB's offset in the image. ok is false unless the
// header is version 2.
func (h *HeaderV0) DtbPosition() (pos int64, ok bool) {
	v, ok := h.Versioned.(V2Fields)
	if !ok {
		return 0, false
	}

	return h.RecoveryDtboPosition() + int64(v.RecoveryDtboSize) + h.paddingSize(v.RecoveryDtboSize), true
}

// CmdlineArgs returns the full kernel command line: both command line fields,
// each read up to its first NUL.
func (h *HeaderV0) CmdlineArgs() []byte {
	cmdline := append([]byte{}, CString(h.CmdlinePart1[:])...)
	return append(cmdline, CString(h.CmdlinePart2[:])...)
}

// SetCmdline stores a kernel command line, spilling anything that does not
// fit in the first field into the second. It reports false if the command
// line is too long for both.
func (h *HeaderV0) SetCmdline(cmdline string) bool {
	if len(cmdline) > BootArgsSize+BootExtraArgsSize {
		return false
	}

	h.CmdlinePart1 = [BootArgsSize]byte{}
	h.CmdlinePart2 = [BootExtraArgsSize]byte{}

	n := copy(h.CmdlinePart1[:], cmdline)
	copy(h.CmdlinePart2[:], cmdline[n:])
	return true
}

// Board returns the board name up to its first NUL.
func (h *HeaderV0) Board() []byte {
	return CString(h.BoardName[:])
}
