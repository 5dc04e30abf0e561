// Package abootimg parses and serializes Android boot image headers
// (boot.img, recovery.img and vendor_boot.img) for header versions 0 through
// 4, and computes where each payload section lives within an image.
//
// Byte array fields are fixed width and NUL padded. They are not guaranteed
// to be valid text; use CString to read them up to the first NUL.
package abootimg

import (
	"errors"
	"io"
)

// Header is a boot image header of any supported version. Exactly one of its
// fields is set:
//
//   - V0 for boot image header versions 0, 1 and 2
//   - V3 for boot image header versions 3 and 4
//   - Vendor for vendor boot image header versions 3 and 4
type Header struct {
	V0     *HeaderV0
	V3     *HeaderV3
	Vendor *VendorHeader
}

var errEmptyHeader = errors.New("header holds no variant")

// Parse reads a boot image header from r. It looks at the magic and the
// header version to decide which header layout to read. On success r is
// left just past the header.
func Parse(r io.ReadSeeker) (Header, error) {
	var magic [BootMagicSize]byte
	if err := peek(r, 0, "image magic", &magic); err != nil {
		return Header{}, err
	}

	switch magic {
	case VendorBootMagicBytes:
		hdr, err := ReadVendorHeader(r)
		if err != nil {
			return Header{}, err
		}
		return Header{Vendor: hdr}, nil

	case BootMagicBytes:
	default:
		return Header{}, &BadMagicError{Pos: 0, Expected: BootMagicBytes[:], Found: magic[:]}
	}

	var version uint32
	if err := peek(r, BootVersionOffset, "header version", &version); err != nil {
		return Header{}, err
	}

	switch version {
	case 0, 1, 2:
		hdr, err := ReadHeaderV0(r)
		if err != nil {
			return Header{}, err
		}
		return Header{V0: hdr}, nil

	case 3, 4:
		hdr, err := ReadHeaderV3(r)
		if err != nil {
			return Header{}, err
		}
		return Header{V3: hdr}, nil

	default:
		return Header{}, &UnknownVersionError{Pos: BootVersionOffset, Value: version}
	}
}

// peek reads data at pos, then seeks back to the start of the image.
func peek(r io.ReadSeeker, pos int64, what string, data any) error {
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return eMsg(err, "seeking to "+what)
	}

	if err := readFields(r, what, data); err != nil {
		return err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return eMsg(err, "seeking to image start")
	}

	return nil
}

// WriteTo writes the header to out. Only the header is written; the caller
// writes the padding and payload sections. out is never seeked.
func (h Header) WriteTo(out io.Writer) (int64, error) {
	switch {
	case h.V0 != nil:
		return h.V0.WriteTo(out)
	case h.V3 != nil:
		return h.V3.WriteTo(out)
	case h.Vendor != nil:
		return h.Vendor.WriteTo(out)
	}

	return 0, errEmptyHeader
}

// IsVendor reports whether h is a vendor boot image header.
func (h Header) IsVendor() bool {
	return h.Vendor != nil
}

// Magic returns the magic the header is written with.
func (h Header) Magic() string {
	if h.Vendor != nil {
		return VendorBootMagic
	}

	return BootMagic
}

// HeaderVersion returns the version that the header is written with.
func (h Header) HeaderVersion() uint32 {
	switch {
	case h.V0 != nil:
		return h.V0.HeaderVersion()
	case h.V3 != nil:
		return h.V3.HeaderVersion()
	case h.Vendor != nil:
		return h.Vendor.HeaderVersion()
	}

	return 0
}

// OsVersionPatch returns the OS version and patch level. Vendor boot headers
// have none and return 0.
func (h Header) OsVersionPatch() OsVersionPatch {
	switch {
	case h.V0 != nil:
		return h.V0.OsVersionPatch
	case h.V3 != nil:
		return h.V3.OsVersionPatch
	}

	return 0
}

// PageSize returns the page size that sections are aligned to.
func (h Header) PageSize() uint32 {
	switch {
	case h.V0 != nil:
		return h.V0.PageSize
	case h.V3 != nil:
		return HeaderV3PageSize
	case h.Vendor != nil:
		return h.Vendor.PageSize
	}

	return 0
}

// KernelSize returns the kernel's size. Vendor boot images have no kernel.
func (h Header) KernelSize() uint32 {
	switch {
	case h.V0 != nil:
		return h.V0.KernelSize
	case h.V3 != nil:
		return h.V3.KernelSize
	}

	return 0
}

// KernelPosition returns the kernel's offset in the image. For vendor boot
// images, which have no kernel, this is where the first section starts.
func (h Header) KernelPosition() int64 {
	switch {
	case h.V0 != nil:
		return h.V0.KernelPosition()
	case h.V3 != nil:
		return h.V3.KernelPosition()
	case h.Vendor != nil:
		return h.Vendor.VendorRamdiskPosition()
	}

	return 0
}

// RamdiskSize returns the ramdisk's size; for vendor boot images, the size of
// the whole vendor ramdisk section.
func (h Header) RamdiskSize() uint32 {
	switch {
	case h.V0 != nil:
		return h.V0.RamdiskSize
	case h.V3 != nil:
		return h.V3.RamdiskSize
	case h.Vendor != nil:
		return h.Vendor.VendorRamdiskSize
	}

	return 0
}

// RamdiskPosition returns the ramdisk's offset in the image.
func (h Header) RamdiskPosition() int64 {
	switch {
	case h.V0 != nil:
		return h.V0.RamdiskPosition()
	case h.V3 != nil:
		return h.V3.RamdiskPosition()
	case h.Vendor != nil:
		return h.Vendor.VendorRamdiskPosition()
	}

	return 0
}
