package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash"
	"github.com/hashicorp/errwrap"
	"github.com/kdrag0n/abootimg"
)

func eMsg(err error, msg string) error {
	return errwrap.Wrapf(msg+": {{err}}", err)
}

// unpacked is everything the text outputs need to know about an image after
// it has been unpacked.
type unpacked struct {
	hdr            abootimg.Header
	dir            string
	sections       []abootimg.Section
	checksums      map[string]uint64
	ramdiskEntries []abootimg.VendorRamdiskTableEntry
	compression    int
}

func (u *unpacked) path(name string) string {
	return filepath.Join(u.dir, name)
}

// section returns the unpacked section with the given name.
func (u *unpacked) section(name string) (abootimg.Section, bool) {
	for _, s := range u.sections {
		if s.Name == name {
			return s, true
		}
	}

	return abootimg.Section{}, false
}

func unpackImage(opts *options, stdout io.Writer) error {
	log.WithField("path", opts.bootImg).Debug("Reading image header")
	in, err := os.Open(opts.bootImg)
	if err != nil {
		return eMsg(err, "opening image")
	}
	defer in.Close()

	hdr, err := abootimg.Parse(in)
	if err != nil {
		return err
	}
	log.WithField("version", hdr.HeaderVersion()).Debugf("Found %s header", hdr.Magic())

	log.WithField("out", opts.out).Debug("Extracting sections")
	secs, entries, err := abootimg.Unpack(in, hdr, opts.out)
	if err != nil {
		return err
	}

	u := &unpacked{
		hdr:            hdr,
		dir:            opts.out,
		sections:       secs,
		checksums:      make(map[string]uint64, len(secs)),
		ramdiskEntries: entries,
		compression:    abootimg.CompUnknown,
	}

	ramdisk := ramdiskSection(u)
	if ramdisk.Size > 0 {
		magic := make([]byte, 4)
		n, _ := io.ReadFull(io.NewSectionReader(in, ramdisk.Position, int64(ramdisk.Size)), magic)
		u.compression = abootimg.DetectCompressor(magic[:n])
		log.WithField("compression", abootimg.CompressorName(u.compression)).Debug("Detected ramdisk compression")
	}

	if opts.decompressRamdisk {
		if err := decompressRamdisk(in, ramdisk, u); err != nil {
			return err
		}
	}

	if opts.format != FormatMkbootimg {
		for _, s := range secs {
			xxh := xxhash.New()
			if err := abootimg.ExtractSection(in, s, xxh); err != nil {
				return err
			}
			u.checksums[s.Name] = xxh.Sum64()
		}
	}

	switch opts.format {
	case FormatMkbootimg:
		return writeMkbootimgArgs(stdout, u, opts.null)
	case FormatJSON:
		return writeJSON(stdout, u)
	default:
		return writeInfo(stdout, u)
	}
}

func ramdiskSection(u *unpacked) abootimg.Section {
	name := abootimg.SectionRamdisk
	if u.hdr.IsVendor() {
		name = abootimg.SectionVendorRamdisk
	}

	s, _ := u.section(name)
	return s
}

// decompressRamdisk writes the decompressed ramdisk next to the compressed one.
func decompressRamdisk(in io.ReaderAt, s abootimg.Section, u *unpacked) (err error) {
	if s.Size == 0 {
		return nil
	}

	reader, err := abootimg.DecompressRamdisk(io.NewSectionReader(in, s.Position, int64(s.Size)), u.compression)
	if err != nil {
		return err
	}
	defer reader.Close()

	path := u.path(s.Name + ".cpio")
	log.WithField("path", path).Debug("Decompressing ramdisk")

	out, err := os.Create(path)
	if err != nil {
		return eMsg(err, "creating "+s.Name+".cpio")
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = eMsg(cerr, "closing "+s.Name+".cpio")
		}
	}()

	if _, err = io.Copy(out, reader); err != nil {
		return eMsg(err, "decompressing "+s.Name)
	}

	return nil
}
