package abootimg

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
)

// Compression types/modes
const (
	CompGzip = iota
	CompLz4
	CompLz4Legacy
	CompLzo
	CompXz
	CompBzip2
	CompLzma
	CompUnknown
)

var compNames = [...]string{
	CompGzip:      "gzip",
	CompLz4:       "lz4",
	CompLz4Legacy: "lz4_legacy",
	CompLzo:       "lzo",
	CompXz:        "xz",
	CompBzip2:     "bzip2",
	CompLzma:      "lzma",
	CompUnknown:   "unknown",
}

// CompressorName returns a short name for a compression mode.
func CompressorName(cMode int) string {
	if cMode < 0 || cMode >= len(compNames) {
		return compNames[CompUnknown]
	}

	return compNames[cMode]
}

// DetectCompressor detects the compressor used for the input ramdisk from its
// leading magic bytes.
func DetectCompressor(compr []byte) int {
	if len(compr) < 2 {
		return CompUnknown
	}

	switch fmt.Sprintf("%02x%02x", compr[0], compr[1]) {
	case "425a":
		return CompBzip2
	case "1f8b":
		return CompGzip
	case "1f9e":
		return CompGzip
	case "0422":
		return CompLz4
	case "0221":
		return CompLz4Legacy
	case "894c":
		return CompLzo
	case "5d00":
		return CompLzma
	case "fd37":
		return CompXz
	default:
		return CompUnknown
	}
}

// DecompressRamdisk returns a reader of the decompressed ramdisk read from
// compr. Closing it does not close compr.
func DecompressRamdisk(compr io.Reader, cMode int) (io.ReadCloser, error) {
	switch cMode {
	case CompGzip:
		gReader, err := gzip.NewReader(compr)
		if err != nil {
			return nil, eMsg(err, "preparing to extract ramdisk")
		}
		return gReader, nil
	case CompLz4, CompLz4Legacy:
		return io.NopCloser(lz4.NewReader(compr)), nil
	default:
		return nil, eMsg(fmt.Errorf("%s ramdisk compression is not supported", CompressorName(cMode)), "preparing to extract ramdisk")
	}
}

// ExtractRamdisk decompresses the provided ramdisk.
func ExtractRamdisk(compr []byte, cMode int) (ramdisk []byte, err error) {
	reader, err := DecompressRamdisk(bytes.NewReader(compr), cMode)
	if err != nil {
		return
	}

	ramdisk, err = io.ReadAll(reader)
	if err != nil {
		return nil, eMsg(err, "extracting ramdisk")
	}

	err = reader.Close()
	if err != nil {
		return nil, eMsg(err, "cleaning up ramdisk extraction")
	}

	return
}

// CompressRamdisk compresses the input ramdisk in a certain mode.
func CompressRamdisk(ramdisk []byte, cMode int) ([]byte, error) {
	var buf bytes.Buffer
	var writer io.WriteCloser
	var err error

	switch cMode {
	case CompGzip:
		writer, err = gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, eMsg(err, "preparing to compress ramdisk")
		}
	case CompLz4, CompLz4Legacy:
		lzWriter := lz4.NewWriter(&buf)
		err = lzWriter.Apply(lz4.LegacyOption(cMode == CompLz4Legacy), lz4.CompressionLevelOption(lz4.Level9))
		if err != nil {
			return nil, eMsg(err, "preparing to compress ramdisk")
		}
		writer = lzWriter
	default:
		return nil, eMsg(errors.New(CompressorName(cMode)+" ramdisk compression is not supported"), "preparing to compress ramdisk")
	}

	_, err = writer.Write(ramdisk)
	if err != nil {
		return nil, eMsg(err, "compressing ramdisk")
	}

	switch cMode {
	case CompGzip:
		err = writer.(*gzip.Writer).Flush()
	}

	if err != nil {
		return nil, eMsg(err, "finishing up ramdisk compression")
	}

	err = writer.Close()
	if err != nil {
		return nil, eMsg(err, "cleaning up ramdisk compression")
	}

	return buf.Bytes(), nil
}
