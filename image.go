package abootimg

// Boot image format constants
const (
	BootMagic          = "ANDROID!"
	VendorBootMagic    = "VNDRBOOT"
	BootMagicSize      = 8
	BootNameSize       = 16
	BootArgsSize       = 512
	BootExtraArgsSize  = 1024
	BootIDSize         = 32
	VendorBootArgsSize = 2048
)

// Header sizes as stored in the header_size field of each variant.
const (
	HeaderV0Size       = 1632
	HeaderV1Size       = 1648
	HeaderV2Size       = 1660
	HeaderV3Size       = 1580
	HeaderV4Size       = 1584
	VendorHeaderV3Size = 2112
	VendorHeaderV4Size = 2128
)

// Byte offsets of the header_version word.
const (
	BootVersionOffset   = 0x28
	VendorVersionOffset = 0x08
)

// BootMagicBytes is the image header magic number, in byte array form
var BootMagicBytes = [...]byte{'A', 'N', 'D', 'R', 'O', 'I', 'D', '!'}

// VendorBootMagicBytes is the vendor boot image header magic number.
var VendorBootMagicBytes = [...]byte{'V', 'N', 'D', 'R', 'B', 'O', 'O', 'T'}

// rawHeaderV0 directly correlates to the fixed part of the Android boot
// image header, versions 0 through 2.
type rawHeaderV0 struct {
	// Android header magic
	Magic [BootMagicSize]byte

	// Size of the kernel in bytes
	KernelSize uint32
	// Kernel physical load address
	KernelAddr uint32

	// Size of the ramdisk in bytes
	RamdiskSize uint32
	// Ramdisk physical load address
	RamdiskAddr uint32

	// Size of the second stage bootloader in bytes
	SecondSize uint32
	// Second stage bootloader physical load address
	SecondAddr uint32

	// Kernel tags physical load address
	TagsAddr uint32
	// Flash page size
	PageSize uint32
	// Header version, 0 to 2
	HeaderVersion uint32

	// OS version and security patch level
	OSVersion uint32

	// Product/board name
	Board [BootNameSize]byte
	// Kernel command line
	Cmdline [BootArgsSize]byte

	// Timestamp/checksum/SHA-1/...
	ID [BootIDSize]byte

	// Supplemental cmdline data for compatibility with older formats
	ExtraCmdline [BootExtraArgsSize]byte
}

// rawTrailerV1 follows rawHeaderV0 in version 1 and 2 headers.
type rawTrailerV1 struct {
	RecoveryDtboSize uint32
	RecoveryDtboAddr uint64
	HeaderSize       uint32
}

// rawTrailerV2 follows rawTrailerV1 in version 2 headers.
type rawTrailerV2 struct {
	DtbSize uint32
	DtbAddr uint64
}

// rawHeaderV3 directly correlates to the boot image header, versions 3 and 4,
// minus the version 4 signature size.
type rawHeaderV3 struct {
	Magic         [BootMagicSize]byte
	KernelSize    uint32
	RamdiskSize   uint32
	OSVersion     uint32
	HeaderSize    uint32
	Reserved      [4]uint32
	HeaderVersion uint32
	Cmdline       [BootArgsSize + BootExtraArgsSize]byte
}

// rawVendorHeader directly correlates to the vendor boot image header,
// versions 3 and 4, minus the version 4 trailer.
type rawVendorHeader struct {
	Magic         [BootMagicSize]byte
	HeaderVersion uint32
	PageSize      uint32
	KernelAddr    uint32
	RamdiskAddr   uint32
	RamdiskSize   uint32
	Cmdline       [VendorBootArgsSize]byte
	TagsAddr      uint32
	Board         [BootNameSize]byte
	HeaderSize    uint32
	DtbSize       uint32
	DtbAddr       uint64
}
