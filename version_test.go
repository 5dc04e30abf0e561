package abootimg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOsVersionPatchKnownVector(t *testing.T) {
	vp := OsVersionPatch(402653574)

	assert.Equal(t, "OsVersionPatch(12.0.0, 2024-06)", vp.String())
	assert.Equal(t, "OsVersionPatch(12.0.0, 2024-06)", fmt.Sprintf("%#v", vp))
	assert.Equal(t, "12.0.0", vp.Version().String())
	assert.Equal(t, "2024-06", vp.Patch().String())
	assert.Equal(t, vp, NewOsVersionPatch(vp.Version(), vp.Patch()))
	assert.Equal(t, NewOsVersion(12, 0, 0), vp.Version())
	assert.Equal(t, NewOsPatch(2024, 6), vp.Patch())
}

func TestOsVersionParts(t *testing.T) {
	v := NewOsVersion(11, 2, 127)
	major, minor, patch := v.Parts()
	assert.Equal(t, uint8(11), major)
	assert.Equal(t, uint8(2), minor)
	assert.Equal(t, uint8(127), patch)
	assert.Equal(t, "11.2.127", v.String())
}

func TestOsVersionMasksComponents(t *testing.T) {
	major, minor, patch := NewOsVersion(200, 128, 255).Parts()
	assert.Equal(t, uint8(200&0x7f), major)
	assert.Equal(t, uint8(0), minor)
	assert.Equal(t, uint8(0x7f), patch)
}

func TestOsPatchRendering(t *testing.T) {
	p := NewOsPatch(2019, 3)
	assert.Equal(t, uint16(2019), p.Year())
	assert.Equal(t, uint8(3), p.Month())
	assert.Equal(t, "2019-03", p.String())
}

func TestOsVersionPatchZero(t *testing.T) {
	var vp OsVersionPatch
	assert.Equal(t, "0.0.0", vp.Version().String())
	assert.Equal(t, "2000-00", vp.Patch().String())
}

func TestOsVersionRoundTrip(t *testing.T) {
	p := NewOsPatch(2021, 12)
	for major := 0; major < 128; major++ {
		for minor := 0; minor < 128; minor++ {
			for patch := 0; patch < 128; patch++ {
				v := NewOsVersion(uint8(major), uint8(minor), uint8(patch))
				vp := NewOsVersionPatch(v, p)
				if vp.Version() != v || vp.Patch() != p {
					t.Fatalf("%d.%d.%d: got %v", major, minor, patch, vp)
				}

				a, b, c := vp.Version().Parts()
				if int(a) != major || int(b) != minor || int(c) != patch {
					t.Fatalf("%d.%d.%d: parts %d.%d.%d", major, minor, patch, a, b, c)
				}
			}
		}
	}
}

func TestOsPatchRoundTrip(t *testing.T) {
	v := NewOsVersion(127, 127, 127)
	for year := 2000; year <= 2127; year++ {
		for month := 1; month <= 12; month++ {
			p := NewOsPatch(uint16(year), uint8(month))
			vp := NewOsVersionPatch(v, p)
			require.Equal(t, v, vp.Version())
			require.Equal(t, p, vp.Patch())
			require.Equal(t, uint16(year), vp.Patch().Year())
			require.Equal(t, uint8(month), vp.Patch().Month())
		}
	}
}

func TestParseOsVersion(t *testing.T) {
	tests := []struct {
		in   string
		want OsVersion
	}{
		{"12.0.0", NewOsVersion(12, 0, 0)},
		{"11.2", NewOsVersion(11, 2, 0)},
		{"9", NewOsVersion(9, 0, 0)},
		{"127.127.127", NewOsVersion(127, 127, 127)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOsVersion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "1.2.3.4", "128.0.0", "a.b.c", "-1"} {
		_, err := ParseOsVersion(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseOsPatch(t *testing.T) {
	got, err := ParseOsPatch("2024-06")
	require.NoError(t, err)
	assert.Equal(t, NewOsPatch(2024, 6), got)

	got, err = ParseOsPatch("2023-11-05")
	require.NoError(t, err)
	assert.Equal(t, "2023-11", got.String())

	for _, bad := range []string{"", "2024", "2024-13", "2024-00", "1999-01", "2128-01", "x-01"} {
		_, err := ParseOsPatch(bad)
		assert.Error(t, err, bad)
	}
}
