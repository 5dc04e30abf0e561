package abootimg

import (
	"encoding/binary"
	"errors"
)

var testOsVersionPatch = NewOsVersionPatch(NewOsVersion(12, 0, 0), NewOsPatch(2024, 6))

func putU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

func putU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:], v)
}

// bootV0Bytes builds a version 0, 1 or 2 header field by field at the
// offsets used by mkbootimg.
func bootV0Bytes(version uint32, pageSize uint32) []byte {
	size := map[uint32]int{0: HeaderV0Size, 1: HeaderV1Size, 2: HeaderV2Size}[version]
	b := make([]byte, size)

	copy(b, "ANDROID!")
	putU32(b, 8, 0x00800000)
	putU32(b, 12, 0x10008000)
	putU32(b, 16, 0x00100000)
	putU32(b, 20, 0x11000000)
	putU32(b, 24, 0)
	putU32(b, 28, 0x10f00000)
	putU32(b, 32, 0x10000100)
	putU32(b, 36, pageSize)
	putU32(b, 40, version)
	putU32(b, 44, uint32(testOsVersionPatch))
	copy(b[48:], "testboard")
	copy(b[64:], "console=ttyMSM0 androidboot.hardware=qcom")
	for i := 576; i < 608; i++ {
		b[i] = byte(i)
	}
	copy(b[608:], "androidboot.extra=1")

	if version >= 1 {
		putU32(b, 1632, 0x2000)
		putU64(b, 1636, 0x12345678)
		putU32(b, 1644, uint32(size))
	}
	if version == 2 {
		putU32(b, 1648, 0x1000)
		putU64(b, 1652, 0x11f00000)
	}

	return b
}

// bootV3Bytes builds a version 3 or 4 header.
func bootV3Bytes(version uint32) []byte {
	size := HeaderV3Size
	if version == 4 {
		size = HeaderV4Size
	}
	b := make([]byte, size)

	copy(b, "ANDROID!")
	putU32(b, 8, 0x200000)
	putU32(b, 12, 0x100000)
	putU32(b, 16, uint32(testOsVersionPatch))
	putU32(b, 20, uint32(size))
	putU32(b, 40, version)
	copy(b[44:], "console=ttyS0 buildvariant=user")
	if version == 4 {
		putU32(b, 1580, 0x1000)
	}

	return b
}

// vendorBytes builds a version 3 or 4 vendor boot header.
func vendorBytes(version uint32) []byte {
	size := VendorHeaderV3Size
	if version == 4 {
		size = VendorHeaderV4Size
	}
	b := make([]byte, size)

	copy(b, "VNDRBOOT")
	putU32(b, 8, version)
	putU32(b, 12, 4096)
	putU32(b, 16, 0x00008000)
	putU32(b, 20, 0x01000000)
	putU32(b, 24, 0x1800)
	copy(b[28:], "androidboot.console=ttyMSM0")
	putU32(b, 2076, 0x00000100)
	copy(b[2080:], "vendorboard")
	putU32(b, 2096, uint32(size))
	putU32(b, 2100, 0x900)
	putU64(b, 2104, 0x01f00000)
	if version == 4 {
		putU32(b, 2112, 2*VendorRamdiskTableEntryV4Size)
		putU32(b, 2116, 2)
		putU32(b, 2120, VendorRamdiskTableEntryV4Size)
		putU32(b, 2124, 0x40)
	}

	return b
}

// shortWriter accepts only half of every write.
type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) / 2, nil
}

var errSink = errors.New("sink failed")

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errSink
}
