package abootimg

import (
	"fmt"
	"strconv"
	"strings"
)

/* OS version and security patch level
 * For version A.B.C, patch level Y-M
 * ver = A << 14 | B << 7 | C         (7 bits for each ABC)
 * lvl = ((Y - 2000) & 127) << 4 | M  (7 bits for Y, 4 bits for M)
 * os_version = ver << 11 | lvl */

// OsVersion is the packed A.B.C operating system version.
type OsVersion uint32

// OsPatch is the packed year-month security patch level.
type OsPatch uint16

// OsVersionPatch is the os_version header word: an OsVersion in the top 21
// bits and an OsPatch in the low 11 bits. Zero means unspecified.
type OsVersionPatch uint32

const (
	versionPartMask = 0x7f
	patchBits       = 11
	patchMask       = 1<<patchBits - 1
	patchYearBase   = 2000
)

// NewOsVersion packs a version triple. Each part must fit in 7 bits; higher
// bits are discarded.
func NewOsVersion(major, minor, patch uint8) OsVersion {
	return OsVersion(uint32(major&versionPartMask)<<14 |
		uint32(minor&versionPartMask)<<7 |
		uint32(patch&versionPartMask))
}

// Parts returns the major, minor and patch components.
func (v OsVersion) Parts() (major, minor, patch uint8) {
	major = uint8(v >> 14 & versionPartMask)
	minor = uint8(v >> 7 & versionPartMask)
	patch = uint8(v & versionPartMask)
	return
}

func (v OsVersion) String() string {
	a, b, c := v.Parts()
	return fmt.Sprintf("%d.%d.%d", a, b, c)
}

// NewOsPatch packs a patch level. year must be in 2000..2127 and month in
// 1..12; out of range values are masked.
func NewOsPatch(year uint16, month uint8) OsPatch {
	return OsPatch((year-patchYearBase)&0x7f<<4 | uint16(month&0xf))
}

// Year returns the patch year.
func (p OsPatch) Year() uint16 {
	return uint16(p>>4) + patchYearBase
}

// Month returns the patch month.
func (p OsPatch) Month() uint8 {
	return uint8(p & 0xf)
}

func (p OsPatch) String() string {
	return fmt.Sprintf("%d-%02d", p.Year(), p.Month())
}

// NewOsVersionPatch combines a version and a patch level into one word.
func NewOsVersionPatch(v OsVersion, p OsPatch) OsVersionPatch {
	return OsVersionPatch(uint32(v)<<patchBits | uint32(p)&patchMask)
}

// Version returns the version part.
func (vp OsVersionPatch) Version() OsVersion {
	return OsVersion(vp >> patchBits)
}

// Patch returns the patch level part.
func (vp OsVersionPatch) Patch() OsPatch {
	return OsPatch(vp & patchMask)
}

func (vp OsVersionPatch) String() string {
	return fmt.Sprintf("OsVersionPatch(%s, %s)", vp.Version(), vp.Patch())
}

// GoString makes %#v render the decoded form rather than the raw word.
func (vp OsVersionPatch) GoString() string {
	return vp.String()
}

// ParseOsVersion parses an "A.B.C" version string. Missing trailing parts
// are zero, as mkbootimg accepts "12" and "12.1".
func ParseOsVersion(s string) (OsVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid os version %q", s)
	}

	var nums [3]uint8
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 7)
		if err != nil {
			return 0, eMsg(err, fmt.Sprintf("parsing os version %q", s))
		}
		nums[i] = uint8(n)
	}

	return NewOsVersion(nums[0], nums[1], nums[2]), nil
}

// ParseOsPatch parses a "YYYY-MM" patch level. A trailing day ("YYYY-MM-DD")
// is accepted and ignored since the header cannot store it.
func ParseOsPatch(s string) (OsPatch, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid os patch level %q", s)
	}

	year, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return 0, eMsg(err, fmt.Sprintf("parsing os patch level %q", s))
	}
	month, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return 0, eMsg(err, fmt.Sprintf("parsing os patch level %q", s))
	}

	if year < patchYearBase || year > patchYearBase+0x7f || month < 1 || month > 12 {
		return 0, fmt.Errorf("os patch level %q out of range", s)
	}

	return NewOsPatch(uint16(year), uint8(month)), nil
}
