package abootimg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Section names, which are also the file names used by Unpack.
const (
	SectionKernel             = "kernel"
	SectionRamdisk            = "ramdisk"
	SectionSecond             = "second"
	SectionRecoveryDtbo       = "recovery_dtbo"
	SectionDtb                = "dtb"
	SectionBootSignature      = "boot_signature"
	SectionVendorRamdisk      = "vendor_ramdisk"
	SectionVendorRamdiskTable = "vendor_ramdisk_table"
	SectionBootconfig         = "bootconfig"
)

// Section is a payload section of a boot image.
type Section struct {
	Name     string
	Position int64
	Size     uint32
}

// End returns the offset just past the section's data.
func (s Section) End() int64 {
	return s.Position + int64(s.Size)
}

// Sections lists the payload sections of an image in the order they appear.
// The kernel and ramdisk of boot images (and the vendor ramdisk of vendor
// boot images) are always listed; other sections only when non-empty.
func Sections(h Header) []Section {
	var secs []Section
	add := func(name string, pos int64, size uint32, always bool) {
		if always || size != 0 {
			secs = append(secs, Section{Name: name, Position: pos, Size: size})
		}
	}

	switch {
	case h.V0 != nil:
		v0 := h.V0
		add(SectionKernel, v0.KernelPosition(), v0.KernelSize, true)
		add(SectionRamdisk, v0.RamdiskPosition(), v0.RamdiskSize, true)
		add(SectionSecond, v0.SecondBootloaderPosition(), v0.SecondBootloaderSize, false)
		if size, _, ok := v0.RecoveryDtbo(); ok {
			add(SectionRecoveryDtbo, v0.RecoveryDtboPosition(), size, false)
		}
		if size, _, ok := v0.Dtb(); ok {
			pos, _ := v0.DtbPosition()
			add(SectionDtb, pos, size, false)
		}

	case h.V3 != nil:
		v3 := h.V3
		add(SectionKernel, v3.KernelPosition(), v3.KernelSize, true)
		add(SectionRamdisk, v3.RamdiskPosition(), v3.RamdiskSize, true)
		add(SectionBootSignature, v3.BootSignaturePosition(), v3.SignatureSize(), false)

	case h.Vendor != nil:
		vnd := h.Vendor
		add(SectionVendorRamdisk, vnd.VendorRamdiskPosition(), vnd.VendorRamdiskSize, true)
		add(SectionDtb, vnd.DtbPosition(), vnd.DtbSize, false)
		if vnd.V4 != nil {
			add(SectionVendorRamdiskTable, vnd.VendorRamdiskTablePosition(), vnd.V4.VendorRamdiskTableSize, false)
			add(SectionBootconfig, vnd.BootconfigPosition(), vnd.V4.BootconfigSize, false)
		}
	}

	return secs
}

// VendorRamdiskSections returns one section per vendor ramdisk table entry,
// named vendor_ramdisk00, vendor_ramdisk01 and so on.
func VendorRamdiskSections(h *VendorHeader, entries []VendorRamdiskTableEntry) []Section {
	secs := make([]Section, 0, len(entries))
	base := h.VendorRamdiskPosition()
	for i, e := range entries {
		secs = append(secs, Section{
			Name:     fmt.Sprintf("%s%02d", SectionVendorRamdisk, i),
			Position: base + int64(e.RamdiskOffset),
			Size:     e.RamdiskSize,
		})
	}

	return secs
}

// ExtractSection copies a section's data from the image to out.
func ExtractSection(fin io.ReaderAt, s Section, out io.Writer) error {
	n, err := io.Copy(out, io.NewSectionReader(fin, s.Position, int64(s.Size)))
	if err != nil {
		return eMsg(err, "extracting "+s.Name)
	}

	if n != int64(s.Size) {
		return eMsg(ErrShortRead, "extracting "+s.Name)
	}

	return nil
}

// Unpack extracts every section of the image into its own file in dir, which
// is created if needed. Version 4 vendor boot images also have each ramdisk
// of their vendor ramdisk table extracted. The sections written are returned,
// along with the vendor ramdisk table entries, if any.
func Unpack(fin io.ReaderAt, h Header, dir string) ([]Section, []VendorRamdiskTableEntry, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, eMsg(err, "creating output directory")
	}

	secs := Sections(h)
	var entries []VendorRamdiskTableEntry
	if h.Vendor != nil {
		var err error
		entries, err = ReadVendorRamdiskTable(fin, h.Vendor)
		if err != nil {
			return nil, nil, err
		}
		secs = append(secs, VendorRamdiskSections(h.Vendor, entries)...)
	}

	for _, s := range secs {
		if err := extractFile(fin, s, filepath.Join(dir, s.Name)); err != nil {
			return nil, nil, err
		}
	}

	return secs, entries, nil
}

func extractFile(fin io.ReaderAt, s Section, path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return eMsg(err, "creating "+s.Name+" file")
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = eMsg(cerr, "closing "+s.Name+" file")
		}
	}()

	return ExtractSection(fin, s, out)
}
