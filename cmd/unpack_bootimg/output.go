package main

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/kdrag0n/abootimg"
)

var ramdiskTypeNames = [...]string{
	abootimg.VendorRamdiskTypeNone:     "NONE",
	abootimg.VendorRamdiskTypePlatform: "PLATFORM",
	abootimg.VendorRamdiskTypeRecovery: "RECOVERY",
	abootimg.VendorRamdiskTypeDlkm:     "DLKM",
}

func ramdiskTypeName(t uint32) string {
	if int(t) < len(ramdiskTypeNames) {
		return ramdiskTypeNames[t]
	}

	return fmt.Sprintf("0x%x", t)
}

// printer writes formatted text and remembers the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

// field prints a labelled byte string up to its first NUL.
func (p *printer) field(label string, value []byte) {
	p.printf("%s: ", label)
	if p.err == nil {
		_, p.err = p.w.Write(abootimg.CString(value))
	}
	p.printf("\n")
}

func writeInfo(w io.Writer, u *unpacked) error {
	p := &printer{w: w}
	hdr := u.hdr

	p.printf("boot magic: %s\n", hdr.Magic())
	switch {
	case hdr.V0 != nil:
		v0 := hdr.V0
		p.printf("kernel_size: %d\n", v0.KernelSize)
		p.printf("kernel load address: 0x%08x\n", v0.KernelAddr)
		p.printf("ramdisk size: %d\n", v0.RamdiskSize)
		p.printf("ramdisk load address: 0x%08x\n", v0.RamdiskAddr)
		p.printf("second bootloader size: %d\n", v0.SecondBootloaderSize)
		p.printf("second bootloader load address: 0x%08x\n", v0.SecondBootloaderAddr)
		p.printf("kernel tags load address: 0x%08x\n", v0.TagsAddr)
		p.printf("page size: %d\n", v0.PageSize)
	case hdr.V3 != nil:
		p.printf("kernel_size: %d\n", hdr.V3.KernelSize)
		p.printf("ramdisk size: %d\n", hdr.V3.RamdiskSize)
	case hdr.Vendor != nil:
		vnd := hdr.Vendor
		p.printf("vendor boot image header version: %d\n", vnd.HeaderVersion())
		p.printf("page size: 0x%08x\n", vnd.PageSize)
		p.printf("kernel load address: 0x%08x\n", vnd.KernelAddr)
		p.printf("ramdisk load address: 0x%08x\n", vnd.RamdiskAddr)
		p.printf("vendor ramdisk total size: %d\n", vnd.VendorRamdiskSize)
		p.field("vendor command line args", vnd.Cmdline[:])
		p.printf("kernel tags load address: 0x%08x\n", vnd.TagsAddr)
		p.field("product name", vnd.BoardName[:])
		p.printf("dtb size: %d\n", vnd.DtbSize)
		p.printf("dtb address: 0x%016x\n", vnd.DtbAddr)
		if vnd.V4 != nil {
			p.printf("vendor ramdisk table size: %d\n", vnd.V4.VendorRamdiskTableSize)
			p.printf("vendor ramdisk table:\n")
			for i, e := range u.ramdiskEntries {
				p.printf("  vendor_ramdisk%02d:\n", i)
				p.printf("    size: %d\n", e.RamdiskSize)
				p.printf("    offset: %d\n", e.RamdiskOffset)
				p.printf("    type: %s\n", ramdiskTypeName(e.RamdiskType))
				p.field("    name", e.RamdiskName[:])
				p.printf("    board id: %v\n", e.BoardID)
			}
			p.printf("vendor bootconfig size: %d\n", vnd.V4.BootconfigSize)
		}
	}

	if !hdr.IsVendor() {
		p.printf("os version: %s\n", hdr.OsVersionPatch().Version())
		p.printf("os patch level: %s\n", hdr.OsVersionPatch().Patch())
		p.printf("boot image header version: %d\n", hdr.HeaderVersion())
	}

	switch {
	case hdr.V0 != nil:
		v0 := hdr.V0
		p.field("product name", v0.BoardName[:])
		p.field("command line args", v0.CmdlinePart1[:])
		p.field("additional command line args", v0.CmdlinePart2[:])
		if size, addr, ok := v0.RecoveryDtbo(); ok {
			p.printf("recovery dtbo size: %d\n", size)
			p.printf("recovery dtbo offset: 0x%016x\n", addr)
			p.printf("boot header size: %d\n", v0.HeaderSize())
		}
		if size, addr, ok := v0.Dtb(); ok {
			p.printf("dtb size: %d\n", size)
			p.printf("dtb address: 0x%016x\n", addr)
		}
	case hdr.V3 != nil:
		p.field("command line args", hdr.V3.Cmdline[:])
		if hdr.V3.V4SignatureSize != nil {
			p.printf("boot.img signature size: %d\n", *hdr.V3.V4SignatureSize)
		}
	}

	if ramdisk := ramdiskSection(u); ramdisk.Size > 0 {
		p.printf("ramdisk compression: %s\n", abootimg.CompressorName(u.compression))
	}

	for _, s := range u.sections {
		if sum, ok := u.checksums[s.Name]; ok {
			p.printf("%s xxh64: %016x\n", s.Name, sum)
		}
	}

	return p.err
}

// writeMkbootimgArgs prints arguments that make mkbootimg rebuild the image
// from the unpacked files. Byte strings are shell quoted unless null is set,
// in which case every argument is NUL terminated instead.
func writeMkbootimgArgs(w io.Writer, u *unpacked, null bool) error {
	var args [][]byte
	arg := func(key string, value []byte) {
		if !null {
			value = shellQuote(value)
		}
		args = append(args, []byte("--"+key), value)
	}
	argf := func(key, format string, a ...any) {
		arg(key, []byte(fmt.Sprintf(format, a...)))
	}
	file := func(key, name string) {
		if _, ok := u.section(name); ok {
			arg(key, []byte(u.path(name)))
		}
	}

	hdr := u.hdr
	argf("header_version", "%d", hdr.HeaderVersion())

	switch {
	case hdr.V0 != nil, hdr.V3 != nil:
		argf("os_version", "%s", hdr.OsVersionPatch().Version())
		argf("os_patch_level", "%s", hdr.OsVersionPatch().Patch())
		file("kernel", abootimg.SectionKernel)
		file("ramdisk", abootimg.SectionRamdisk)
	}

	switch {
	case hdr.V0 != nil:
		v0 := hdr.V0
		file("second", abootimg.SectionSecond)
		file("recovery_dtbo", abootimg.SectionRecoveryDtbo)
		file("dtb", abootimg.SectionDtb)
		argf("pagesize", "0x%08x", v0.PageSize)
		argf("base", "0x%08x", 0)
		argf("kernel_offset", "0x%08x", v0.KernelAddr)
		argf("ramdisk_offset", "0x%08x", v0.RamdiskAddr)
		argf("second_offset", "0x%08x", v0.SecondBootloaderAddr)
		argf("tags_offset", "0x%08x", v0.TagsAddr)
		if _, addr, ok := v0.Dtb(); ok {
			argf("dtb_offset", "0x%016x", addr)
		}
		arg("board", v0.Board())
		arg("cmdline", v0.CmdlineArgs())

	case hdr.V3 != nil:
		arg("cmdline", hdr.V3.CmdlineArgs())

	case hdr.Vendor != nil:
		vnd := hdr.Vendor
		argf("pagesize", "0x%08x", vnd.PageSize)
		argf("base", "0x%08x", 0)
		argf("kernel_offset", "0x%08x", vnd.KernelAddr)
		argf("ramdisk_offset", "0x%08x", vnd.RamdiskAddr)
		argf("tags_offset", "0x%08x", vnd.TagsAddr)
		argf("dtb_offset", "0x%016x", vnd.DtbAddr)
		arg("vendor_cmdline", vnd.CmdlineArgs())
		arg("board", vnd.Board())

		if len(u.ramdiskEntries) == 0 {
			file("vendor_ramdisk", abootimg.SectionVendorRamdisk)
		}
		for i, e := range u.ramdiskEntries {
			argf("ramdisk_type", "%s", ramdiskTypeName(e.RamdiskType))
			arg("ramdisk_name", e.Name())
			for j, id := range e.BoardID {
				if id != 0 {
					argf(fmt.Sprintf("board_id%d", j), "0x%08x", id)
				}
			}
			file("vendor_ramdisk_fragment", fmt.Sprintf("%s%02d", abootimg.SectionVendorRamdisk, i))
		}

		file("dtb", abootimg.SectionDtb)
		file("vendor_bootconfig", abootimg.SectionBootconfig)
	}

	sep, end := []byte(" "), []byte("\n")
	if null {
		sep, end = []byte{0}, []byte{0}
	}

	out := append(bytes.Join(args, sep), end...)
	_, err := w.Write(out)
	return err
}

type jsonSection struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Offset   int64  `json:"offset"`
	Size     uint32 `json:"size"`
	Checksum string `json:"xxh64,omitempty"`
}

type jsonVendorRamdisk struct {
	Name    string     `json:"name"`
	Type    string     `json:"type"`
	Offset  uint32     `json:"offset"`
	Size    uint32     `json:"size"`
	BoardID [16]uint32 `json:"board_id"`
}

type jsonReport struct {
	Magic              string              `json:"magic"`
	HeaderVersion      uint32              `json:"header_version"`
	OsVersion          string              `json:"os_version,omitempty"`
	OsPatchLevel       string              `json:"os_patch_level,omitempty"`
	PageSize           uint32              `json:"page_size"`
	Board              string              `json:"board,omitempty"`
	Cmdline            string              `json:"cmdline"`
	Addresses          map[string]uint64   `json:"addresses,omitempty"`
	RamdiskCompression string              `json:"ramdisk_compression,omitempty"`
	Sections           []jsonSection       `json:"sections"`
	VendorRamdisks     []jsonVendorRamdisk `json:"vendor_ramdisks,omitempty"`
}

func newJSONReport(u *unpacked) *jsonReport {
	hdr := u.hdr
	rep := &jsonReport{
		Magic:         hdr.Magic(),
		HeaderVersion: hdr.HeaderVersion(),
		PageSize:      hdr.PageSize(),
		Addresses:     make(map[string]uint64),
	}

	if !hdr.IsVendor() {
		rep.OsVersion = hdr.OsVersionPatch().Version().String()
		rep.OsPatchLevel = hdr.OsVersionPatch().Patch().String()
	}

	switch {
	case hdr.V0 != nil:
		v0 := hdr.V0
		rep.Board = string(v0.Board())
		rep.Cmdline = string(v0.CmdlineArgs())
		rep.Addresses["kernel"] = uint64(v0.KernelAddr)
		rep.Addresses["ramdisk"] = uint64(v0.RamdiskAddr)
		rep.Addresses["second"] = uint64(v0.SecondBootloaderAddr)
		rep.Addresses["tags"] = uint64(v0.TagsAddr)
		if _, addr, ok := v0.RecoveryDtbo(); ok {
			rep.Addresses["recovery_dtbo"] = addr
		}
		if _, addr, ok := v0.Dtb(); ok {
			rep.Addresses["dtb"] = addr
		}
	case hdr.V3 != nil:
		rep.Cmdline = string(hdr.V3.CmdlineArgs())
	case hdr.Vendor != nil:
		vnd := hdr.Vendor
		rep.Board = string(vnd.Board())
		rep.Cmdline = string(vnd.CmdlineArgs())
		rep.Addresses["kernel"] = uint64(vnd.KernelAddr)
		rep.Addresses["ramdisk"] = uint64(vnd.RamdiskAddr)
		rep.Addresses["tags"] = uint64(vnd.TagsAddr)
		rep.Addresses["dtb"] = vnd.DtbAddr
	}

	if ramdisk := ramdiskSection(u); ramdisk.Size > 0 {
		rep.RamdiskCompression = abootimg.CompressorName(u.compression)
	}

	rep.Sections = make([]jsonSection, 0, len(u.sections))
	for _, s := range u.sections {
		js := jsonSection{
			Name:   s.Name,
			Path:   u.path(s.Name),
			Offset: s.Position,
			Size:   s.Size,
		}
		if sum, ok := u.checksums[s.Name]; ok {
			js.Checksum = fmt.Sprintf("%016x", sum)
		}
		rep.Sections = append(rep.Sections, js)
	}

	for _, e := range u.ramdiskEntries {
		rep.VendorRamdisks = append(rep.VendorRamdisks, jsonVendorRamdisk{
			Name:    string(e.Name()),
			Type:    ramdiskTypeName(e.RamdiskType),
			Offset:  e.RamdiskOffset,
			Size:    e.RamdiskSize,
			BoardID: e.BoardID,
		})
	}

	return rep
}

func writeJSON(w io.Writer, u *unpacked) error {
	data, err := json.MarshalIndent(newJSONReport(u), "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))
	return err
}
