package abootimg

import (
	"bytes"
	"fmt"
	"io"
)

// writePadding writes zeros until count bytes have been written since the
// last page boundary.
func writePadding(out io.Writer, count int64, pageSize uint32) (err error) {
	size := padding(count, int64(pageSize))
	if size == 0 {
		return
	}

	pad := make([]byte, size)
	_, err = writeAll(out, pad, "padding")

	return
}

// Pack writes a complete image: the header, then every section listed by
// Sections, each placed at its computed position. payloads maps section
// names to their data, whose length must match the size recorded in the
// header. Missing payloads are only allowed for empty sections.
func Pack(out io.Writer, h Header, payloads map[string][]byte) error {
	count, err := h.WriteTo(out)
	if err != nil {
		return err
	}

	for _, s := range Sections(h) {
		data := payloads[s.Name]
		if len(data) != int(s.Size) {
			return fmt.Errorf("%s is %d bytes, header says %d", s.Name, len(data), s.Size)
		}

		if s.Position < count {
			return fmt.Errorf("%s at 0x%x overlaps previous data ending at 0x%x", s.Name, s.Position, count)
		}

		if _, err := writeAll(out, make([]byte, s.Position-count), "padding"); err != nil {
			return err
		}

		if _, err := writeAll(out, data, s.Name); err != nil {
			return err
		}

		count = s.End()
	}

	return writePadding(out, count, h.PageSize())
}

// DumpBytes packs the image into a byte slice.
func DumpBytes(h Header, payloads map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := Pack(&buf, h, payloads); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
