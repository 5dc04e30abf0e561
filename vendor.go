package abootimg

import (
	"bytes"
	"io"
)

// Vendor ramdisk table constants
const (
	VendorRamdiskNameSize         = 32
	VendorRamdiskBoardIDSize      = 16
	VendorRamdiskTableEntryV4Size = 108
)

// Vendor ramdisk types
const (
	VendorRamdiskTypeNone = iota
	VendorRamdiskTypePlatform
	VendorRamdiskTypeRecovery
	VendorRamdiskTypeDlkm
)

// VendorHeader is the Android vendor boot image header for versions 3 and 4.
//
//	+------------------------+
//	| vendor boot header     |
//	+------------------------+
//	| vendor ramdisk section |
//	+------------------------+
//	| dtb                    |
//	+------------------------+
//	| vendor ramdisk table   | (4)
//	+------------------------+
//	| bootconfig             | (4)
//	+------------------------+
//
// Every section is padded to the page size.
type VendorHeader struct {
	// Must be a power of two.
	PageSize          uint32
	KernelAddr        uint32
	RamdiskAddr       uint32
	VendorRamdiskSize uint32
	Cmdline           [VendorBootArgsSize]byte
	TagsAddr          uint32
	BoardName         [BootNameSize]byte
	DtbSize           uint32
	DtbAddr           uint64

	// Version 4 fields. Their presence selects version 4 when the header is
	// written.
	V4 *VendorHeaderV4
}

// VendorHeaderV4 holds the fields added by version 4 of the vendor boot
// image header.
type VendorHeaderV4 struct {
	VendorRamdiskTableSize      uint32
	VendorRamdiskTableEntryNum  uint32
	VendorRamdiskTableEntrySize uint32
	BootconfigSize              uint32
}

// VendorRamdiskTableEntry describes one ramdisk inside the vendor ramdisk
// section of a version 4 vendor boot image.
type VendorRamdiskTableEntry struct {
	// Size of the ramdisk in bytes
	RamdiskSize uint32
	// Offset of the ramdisk within the vendor ramdisk section
	RamdiskOffset uint32
	// One of the VendorRamdiskType constants
	RamdiskType uint32
	RamdiskName [VendorRamdiskNameSize]byte
	// Hardware identifiers, encoded as defined by the vendor
	BoardID [VendorRamdiskBoardIDSize]uint32
}

// ReadVendorHeader reads a version 3 or 4 vendor boot image header from r,
// which must be positioned at the start of the header.
func ReadVendorHeader(r io.Reader) (*VendorHeader, error) {
	prefix, err := checkMagic(r, "vendor boot image header", VendorBootMagicBytes)
	if err != nil {
		return nil, err
	}

	var raw rawVendorHeader
	if err := readFields(prefix, "vendor boot image header", &raw); err != nil {
		return nil, err
	}

	if !isPowerOfTwo(raw.PageSize) {
		return nil, eMsg(ErrInvalidPageSize, "validating vendor boot image header")
	}

	hdr := &VendorHeader{
		PageSize:          raw.PageSize,
		KernelAddr:        raw.KernelAddr,
		RamdiskAddr:       raw.RamdiskAddr,
		VendorRamdiskSize: raw.RamdiskSize,
		Cmdline:           raw.Cmdline,
		TagsAddr:          raw.TagsAddr,
		BoardName:         raw.Board,
		DtbSize:           raw.DtbSize,
		DtbAddr:           raw.DtbAddr,
	}

	switch raw.HeaderVersion {
	case 3:
	case 4:
		var v4 VendorHeaderV4
		if err := readFields(r, "vendor boot image header v4 fields", &v4); err != nil {
			return nil, err
		}
		hdr.V4 = &v4
	default:
		return nil, &UnknownVersionError{Pos: VendorVersionOffset, Value: raw.HeaderVersion}
	}

	if want := hdr.HeaderSize(); raw.HeaderSize != want {
		return nil, &HeaderSizeError{Variant: hdr.variant(), Expected: want, Found: raw.HeaderSize}
	}

	return hdr, nil
}

// MarshalBinary encodes the header, recomputing the header version and size.
func (h *VendorHeader) MarshalBinary() ([]byte, error) {
	if !isPowerOfTwo(h.PageSize) {
		return nil, eMsg(ErrInvalidPageSize, "encoding vendor boot image header")
	}

	raw := rawVendorHeader{
		Magic:         VendorBootMagicBytes,
		HeaderVersion: h.HeaderVersion(),
		PageSize:      h.PageSize,
		KernelAddr:    h.KernelAddr,
		RamdiskAddr:   h.RamdiskAddr,
		RamdiskSize:   h.VendorRamdiskSize,
		Cmdline:       h.Cmdline,
		TagsAddr:      h.TagsAddr,
		Board:         h.BoardName,
		HeaderSize:    h.HeaderSize(),
		DtbSize:       h.DtbSize,
		DtbAddr:       h.DtbAddr,
	}

	fields := []any{&raw}
	if h.V4 != nil {
		fields = append(fields, h.V4)
	}

	buf := bytes.NewBuffer(make([]byte, 0, VendorHeaderV4Size))
	if err := encodeFields(buf, "vendor boot image header", fields...); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteTo writes the header to out without any trailing padding.
func (h *VendorHeader) WriteTo(out io.Writer) (int64, error) {
	buf, err := h.MarshalBinary()
	if err != nil {
		return 0, err
	}

	return writeAll(out, buf, "vendor boot image header")
}

// HeaderVersion returns 4 if the header has version 4 fields, otherwise 3.
func (h *VendorHeader) HeaderVersion() uint32 {
	if h.V4 != nil {
		return 4
	}

	return 3
}

// HeaderSize returns the header_size the header is written with: 2128 for
// version 4, otherwise 2112.
func (h *VendorHeader) HeaderSize() uint32 {
	if h.V4 != nil {
		return VendorHeaderV4Size
	}

	return VendorHeaderV3Size
}

func (h *VendorHeader) variant() string {
	if h.V4 != nil {
		return "vendor v4"
	}

	return "vendor v3"
}

func (h *VendorHeader) align(size uint32) int64 {
	return alignUp(int64(size), int64(h.PageSize))
}

// VendorRamdiskPosition returns the vendor ramdisk section's offset in the image.
func (h *VendorHeader) VendorRamdiskPosition() int64 {
	return h.align(h.HeaderSize())
}

// DtbPosition returns the DTB's offset in the image.
func (h *VendorHeader) DtbPosition() int64 {
	return h.VendorRamdiskPosition() + h.align(h.VendorRamdiskSize)
}

// VendorRamdiskTablePosition returns the vendor ramdisk table's offset in the
// image. It is only meaningful for version 4 headers.
func (h *VendorHeader) VendorRamdiskTablePosition() int64 {
	return h.DtbPosition() + h.align(h.DtbSize)
}

// BootconfigPosition returns the bootconfig section's offset in the image. It
// is only meaningful for version 4 headers.
func (h *VendorHeader) BootconfigPosition() int64 {
	var tableSize uint32
	if h.V4 != nil {
		tableSize = h.V4.VendorRamdiskTableSize
	}

	return h.VendorRamdiskTablePosition() + h.align(tableSize)
}

// CmdlineArgs returns the vendor kernel command line up to its first NUL.
func (h *VendorHeader) CmdlineArgs() []byte {
	return CString(h.Cmdline[:])
}

// Board returns the board name up to its first NUL.
func (h *VendorHeader) Board() []byte {
	return CString(h.BoardName[:])
}

// Name returns the ramdisk name up to its first NUL.
func (e *VendorRamdiskTableEntry) Name() []byte {
	return CString(e.RamdiskName[:])
}

// ReadVendorRamdiskTable reads the vendor ramdisk table of a version 4 vendor
// boot image. It returns no entries for version 3.
//
// Entries are read with the stride recorded in the header, so tables written
// with larger entries by newer tools can still be read. The entries must fit
// in the table size recorded in the header.
func ReadVendorRamdiskTable(fin io.ReaderAt, h *VendorHeader) ([]VendorRamdiskTableEntry, error) {
	if h.V4 == nil || h.V4.VendorRamdiskTableEntryNum == 0 {
		return nil, nil
	}

	stride := int64(h.V4.VendorRamdiskTableEntrySize)
	if stride < VendorRamdiskTableEntryV4Size {
		return nil, eMsg(ErrBadEntrySize, "reading vendor ramdisk table")
	}

	if uint64(h.V4.VendorRamdiskTableEntryNum)*uint64(stride) > uint64(h.V4.VendorRamdiskTableSize) {
		return nil, eMsg(ErrBadTableSize, "reading vendor ramdisk table")
	}

	entries := make([]VendorRamdiskTableEntry, h.V4.VendorRamdiskTableEntryNum)
	pos := h.VendorRamdiskTablePosition()
	for i := range entries {
		r := io.NewSectionReader(fin, pos, stride)
		if err := readFields(r, "vendor ramdisk table entry", &entries[i]); err != nil {
			return nil, err
		}

		pos += stride
	}

	return entries, nil
}
