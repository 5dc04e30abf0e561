package main

import (
	"go4.org/bytereplacer"
)

// A single quote inside a single-quoted word is written as '"'"'.
var quoteReplacer = bytereplacer.New(`'`, `'"'"'`)

func isShellSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}

	switch c {
	case '@', '%', '+', '=', ':', ',', '.', '/', '-', '_':
		return true
	}

	return false
}

// shellQuote returns s quoted so that a POSIX shell reads it back as a single
// word. Words made only of safe characters are returned unchanged.
func shellQuote(s []byte) []byte {
	if len(s) == 0 {
		return []byte("''")
	}

	safe := true
	for _, c := range s {
		if !isShellSafe(c) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}

	// Replace works in place, so give it a copy.
	escaped := quoteReplacer.Replace(append([]byte{}, s...))

	quoted := make([]byte, 0, len(escaped)+2)
	quoted = append(quoted, '\'')
	quoted = append(quoted, escaped...)
	return append(quoted, '\'')
}
