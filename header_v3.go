package abootimg

import (
	"bytes"
	"io"
)

// HeaderV3PageSize is the fixed page size of version 3 and 4 boot images.
const HeaderV3PageSize = 4096

// HeaderV3 is the Android boot image header for versions 3 and 4.
//
//	+-------------------------+
//	| boot image header       |
//	+-------------------------+
//	| kernel                  |
//	+-------------------------+
//	| ramdisk                 |
//	+-------------------------+
//	| boot signature (4)      |
//	+-------------------------+
//
// Every section is padded to 4096 bytes.
type HeaderV3 struct {
	KernelSize     uint32
	RamdiskSize    uint32
	OsVersionPatch OsVersionPatch
	Cmdline        [BootArgsSize + BootExtraArgsSize]byte

	// Boot signature size. Only present in version 4, and its presence
	// selects version 4 when the header is written.
	V4SignatureSize *uint32
}

// ReadHeaderV3 reads a version 3 or 4 boot image header from r, which must be
// positioned at the start of the header.
func ReadHeaderV3(r io.Reader) (*HeaderV3, error) {
	prefix, err := checkMagic(r, "boot image header", BootMagicBytes)
	if err != nil {
		return nil, err
	}

	var raw rawHeaderV3
	if err := readFields(prefix, "boot image header", &raw); err != nil {
		return nil, err
	}

	hdr := &HeaderV3{
		KernelSize:     raw.KernelSize,
		RamdiskSize:    raw.RamdiskSize,
		OsVersionPatch: OsVersionPatch(raw.OSVersion),
		Cmdline:        raw.Cmdline,
	}

	switch raw.HeaderVersion {
	case 3:
	case 4:
		var sigSize uint32
		if err := readFields(r, "boot image header v4 fields", &sigSize); err != nil {
			return nil, err
		}
		hdr.V4SignatureSize = &sigSize
	default:
		return nil, &UnknownVersionError{Pos: BootVersionOffset, Value: raw.HeaderVersion}
	}

	if want := hdr.HeaderSize(); raw.HeaderSize != want {
		return nil, &HeaderSizeError{Variant: hdr.variant(), Expected: want, Found: raw.HeaderSize}
	}

	return hdr, nil
}

// MarshalBinary encodes the header, recomputing the header version and size.
func (h *HeaderV3) MarshalBinary() ([]byte, error) {
	raw := rawHeaderV3{
		Magic:         BootMagicBytes,
		KernelSize:    h.KernelSize,
		RamdiskSize:   h.RamdiskSize,
		OSVersion:     uint32(h.OsVersionPatch),
		HeaderSize:    h.HeaderSize(),
		HeaderVersion: h.HeaderVersion(),
		Cmdline:       h.Cmdline,
	}

	fields := []any{&raw}
	if h.V4SignatureSize != nil {
		fields = append(fields, *h.V4SignatureSize)
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderV4Size))
	if err := encodeFields(buf, "boot image header", fields...); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteTo writes the header to out without any trailing padding.
func (h *HeaderV3) WriteTo(out io.Writer) (int64, error) {
	buf, err := h.MarshalBinary()
	if err != nil {
		return 0, err
	}

	return writeAll(out, buf, "boot image header")
}

// HeaderVersion returns 4 if the header has a signature size, otherwise 3.
func (h *HeaderV3) HeaderVersion() uint32 {
	if h.V4SignatureSize != nil {
		return 4
	}

	return 3
}

// HeaderSize returns the header_size the header is written with: 1584 for
// version 4, otherwise 1580.
func (h *HeaderV3) HeaderSize() uint32 {
	if h.V4SignatureSize != nil {
		return HeaderV4Size
	}

	return HeaderV3Size
}

func (h *HeaderV3) variant() string {
	if h.V4SignatureSize != nil {
		return "boot v4"
	}

	return "boot v3"
}

// SignatureSize returns the boot signature size, or 0 for version 3.
func (h *HeaderV3) SignatureSize() uint32 {
	if h.V4SignatureSize == nil {
		return 0
	}

	return *h.V4SignatureSize
}

// KernelPosition returns the kernel's offset in the image, which is always
// one page.
func (h *HeaderV3) KernelPosition() int64 {
	return HeaderV3PageSize
}

// RamdiskPosition returns the ramdisk's offset in the image.
func (h *HeaderV3) RamdiskPosition() int64 {
	return h.KernelPosition() + alignUp(int64(h.KernelSize), HeaderV3PageSize)
}

// BootSignaturePosition returns the boot signature's offset in the image. It
// is only meaningful for version 4 headers with a non-zero signature size.
func (h *HeaderV3) BootSignaturePosition() int64 {
	return h.RamdiskPosition() + alignUp(int64(h.RamdiskSize), HeaderV3PageSize)
}

// CmdlineArgs returns the kernel command line up to its first NUL.
func (h *HeaderV3) CmdlineArgs() []byte {
	return CString(h.Cmdline[:])
}
