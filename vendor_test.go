package abootimg

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadVendorHeader(t *testing.T) {
	for _, version := range []uint32{3, 4} {
		raw := vendorBytes(version)

		hdr, err := ReadVendorHeader(bytes.NewReader(raw))
		require.NoError(t, err)

		assert.Equal(t, version, hdr.HeaderVersion())
		assert.Equal(t, uint32(len(raw)), hdr.HeaderSize())
		assert.Equal(t, uint32(4096), hdr.PageSize)
		assert.Equal(t, uint32(0x8000), hdr.KernelAddr)
		assert.Equal(t, uint32(0x01000000), hdr.RamdiskAddr)
		assert.Equal(t, uint32(0x1800), hdr.VendorRamdiskSize)
		assert.Equal(t, "androidboot.console=ttyMSM0", string(hdr.CmdlineArgs()))
		assert.Equal(t, uint32(0x100), hdr.TagsAddr)
		assert.Equal(t, "vendorboard", string(hdr.Board()))
		assert.Equal(t, uint32(0x900), hdr.DtbSize)
		assert.Equal(t, uint64(0x01f00000), hdr.DtbAddr)

		out, err := hdr.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, raw, out, "version %d round trip", version)
	}
}

func TestVendorHeaderV4Fields(t *testing.T) {
	hdr, err := ReadVendorHeader(bytes.NewReader(vendorBytes(4)))
	require.NoError(t, err)
	require.NotNil(t, hdr.V4)

	assert.Equal(t, VendorHeaderV4{
		VendorRamdiskTableSize:      2 * VendorRamdiskTableEntryV4Size,
		VendorRamdiskTableEntryNum:  2,
		VendorRamdiskTableEntrySize: VendorRamdiskTableEntryV4Size,
		BootconfigSize:              0x40,
	}, *hdr.V4)

	assert.Equal(t, int64(0x1000), hdr.VendorRamdiskPosition())
	assert.Equal(t, int64(0x3000), hdr.DtbPosition())
	assert.Equal(t, int64(0x4000), hdr.VendorRamdiskTablePosition())
	assert.Equal(t, int64(0x5000), hdr.BootconfigPosition())
}

func TestVendorHeaderPositionsLargeHeader(t *testing.T) {
	hdr := &VendorHeader{PageSize: 2048, VendorRamdiskSize: 1, DtbSize: 2049}

	// 2112 bytes of header need two 2048 byte pages
	assert.Equal(t, int64(4096), hdr.VendorRamdiskPosition())
	assert.Equal(t, int64(6144), hdr.DtbPosition())
	assert.Equal(t, int64(10240), hdr.VendorRamdiskTablePosition())
	assert.Equal(t, int64(10240), hdr.BootconfigPosition())
}

func TestReadVendorHeaderErrors(t *testing.T) {
	t.Run("unknown version", func(t *testing.T) {
		raw := vendorBytes(3)
		putU32(raw, 8, 2)

		_, err := ReadVendorHeader(bytes.NewReader(raw))
		var versionErr *UnknownVersionError
		require.ErrorAs(t, err, &versionErr)
		assert.Equal(t, &UnknownVersionError{Pos: 8, Value: 2}, versionErr)
	})

	t.Run("size mismatch", func(t *testing.T) {
		raw := vendorBytes(4)
		putU32(raw, 2096, VendorHeaderV3Size)

		_, err := ReadVendorHeader(bytes.NewReader(raw))
		var sizeErr *HeaderSizeError
		require.ErrorAs(t, err, &sizeErr)
		assert.Equal(t, &HeaderSizeError{Variant: "vendor v4", Expected: VendorHeaderV4Size, Found: VendorHeaderV3Size}, sizeErr)
	})

	t.Run("bad magic", func(t *testing.T) {
		raw := vendorBytes(3)
		copy(raw, "ANDROID!")

		_, err := ReadVendorHeader(bytes.NewReader(raw))
		var magicErr *BadMagicError
		require.ErrorAs(t, err, &magicErr)
		assert.Equal(t, []byte("VNDRBOOT"), magicErr.Expected)
	})

	t.Run("page size", func(t *testing.T) {
		raw := vendorBytes(3)
		putU32(raw, 12, 1000)

		_, err := ReadVendorHeader(bytes.NewReader(raw))
		assert.ErrorIs(t, err, ErrInvalidPageSize)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := ReadVendorHeader(bytes.NewReader(vendorBytes(4)[:2120]))
		assert.ErrorIs(t, err, ErrShortRead)
	})
}

func TestWriteVendorHeaderSelectsVersion(t *testing.T) {
	hdr := &VendorHeader{PageSize: 4096}

	out, err := hdr.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, out, VendorHeaderV3Size)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(out[8:]))
	assert.Equal(t, uint32(VendorHeaderV3Size), binary.LittleEndian.Uint32(out[2096:]))

	hdr.V4 = &VendorHeaderV4{BootconfigSize: 12}
	out, err = hdr.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, out, VendorHeaderV4Size)
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(out[8:]))
	assert.Equal(t, uint32(VendorHeaderV4Size), binary.LittleEndian.Uint32(out[2096:]))
	assert.Equal(t, uint32(12), binary.LittleEndian.Uint32(out[2124:]))

	hdr.PageSize = 0
	_, err = hdr.WriteTo(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}

func testVendorEntries() []VendorRamdiskTableEntry {
	entries := []VendorRamdiskTableEntry{
		{RamdiskSize: 0x1000, RamdiskOffset: 0, RamdiskType: VendorRamdiskTypePlatform},
		{RamdiskSize: 0x800, RamdiskOffset: 0x1000, RamdiskType: VendorRamdiskTypeDlkm},
	}
	copy(entries[0].RamdiskName[:], "platform")
	copy(entries[1].RamdiskName[:], "dlkm")
	entries[1].BoardID[0] = 0xdeadbeef
	entries[1].BoardID[15] = 7

	return entries
}

// vendorImage packs a version 4 vendor boot image whose ramdisk table has
// entries stored with the given stride.
func vendorImage(t *testing.T, stride uint32) (*VendorHeader, []byte) {
	t.Helper()

	entries := testVendorEntries()
	var table bytes.Buffer
	for i := range entries {
		require.NoError(t, binary.Write(&table, binary.LittleEndian, &entries[i]))
		table.Write(make([]byte, int(stride)-VendorRamdiskTableEntryV4Size))
	}

	hdr := &VendorHeader{
		PageSize:          4096,
		VendorRamdiskSize: 0x1800,
		DtbSize:           0x10,
		V4: &VendorHeaderV4{
			VendorRamdiskTableSize:      uint32(table.Len()),
			VendorRamdiskTableEntryNum:  uint32(len(entries)),
			VendorRamdiskTableEntrySize: stride,
			BootconfigSize:              4,
		},
	}

	img, err := DumpBytes(Header{Vendor: hdr}, map[string][]byte{
		SectionVendorRamdisk:      bytes.Repeat([]byte{0xaa}, 0x1800),
		SectionDtb:                bytes.Repeat([]byte{0xd7}, 0x10),
		SectionVendorRamdiskTable: table.Bytes(),
		SectionBootconfig:         []byte("a=b\n"),
	})
	require.NoError(t, err)

	return hdr, img
}

func TestReadVendorRamdiskTable(t *testing.T) {
	for _, stride := range []uint32{VendorRamdiskTableEntryV4Size, 128} {
		hdr, img := vendorImage(t, stride)

		entries, err := ReadVendorRamdiskTable(bytes.NewReader(img), hdr)
		require.NoError(t, err, "stride %d", stride)
		assert.Equal(t, testVendorEntries(), entries, "stride %d", stride)
		assert.Equal(t, "platform", string(entries[0].Name()))
		assert.Equal(t, "dlkm", string(entries[1].Name()))
	}
}

func TestReadVendorRamdiskTableErrors(t *testing.T) {
	hdr, img := vendorImage(t, VendorRamdiskTableEntryV4Size)

	hdr.V4.VendorRamdiskTableEntrySize = 100
	_, err := ReadVendorRamdiskTable(bytes.NewReader(img), hdr)
	assert.ErrorIs(t, err, ErrBadEntrySize)

	hdr.V4.VendorRamdiskTableEntrySize = VendorRamdiskTableEntryV4Size
	hdr.V4.VendorRamdiskTableEntryNum = 100
	hdr.V4.VendorRamdiskTableSize = 100 * VendorRamdiskTableEntryV4Size
	_, err = ReadVendorRamdiskTable(bytes.NewReader(img), hdr)
	assert.ErrorIs(t, err, ErrShortRead)

	entries, err := ReadVendorRamdiskTable(bytes.NewReader(img), &VendorHeader{PageSize: 4096})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadVendorRamdiskTableEntryCountBounded(t *testing.T) {
	for _, num := range []uint32{3, 20_000_000, 0xffffffff} {
		raw := vendorBytes(4)
		putU32(raw, 2116, num)

		h, err := Parse(bytes.NewReader(raw))
		require.NoError(t, err)

		_, err = ReadVendorRamdiskTable(bytes.NewReader(raw), h.Vendor)
		assert.ErrorIs(t, err, ErrBadTableSize, "entry count %d", num)
	}

	raw := vendorBytes(4)
	putU32(raw, 2112, 2*VendorRamdiskTableEntryV4Size-1)
	h, err := Parse(bytes.NewReader(raw))
	require.NoError(t, err)

	_, err = ReadVendorRamdiskTable(bytes.NewReader(raw), h.Vendor)
	assert.ErrorIs(t, err, ErrBadTableSize)

	_, _, err = Unpack(bytes.NewReader(raw), h, t.TempDir())
	assert.ErrorIs(t, err, ErrBadTableSize)
}
