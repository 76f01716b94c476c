// Package charset detects the declared encoding of a PO catalog and
// transcodes catalog text to and from UTF-8.
package charset

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// UTF8 is the name used when a catalog declares no usable charset.
const UTF8 = "UTF-8"

var (
	contentTypeRe = regexp.MustCompile(`"?Content-Type:.+? charset=([\w_\-:.]+)`)
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
)

// Detect returns the charset declared in the Content-Type header field,
// or "" when none is declared or the template placeholder is left in place.
func Detect(raw []byte) string {
	m := contentTypeRe.FindSubmatch(raw)
	if m == nil {
		return ""
	}
	name := string(m[1])
	if strings.EqualFold(name, "CHARSET") {
		return ""
	}
	return name
}

// IsUTF8 reports whether name designates UTF-8 (or a subset of it).
func IsUTF8(name string) bool {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}

// Lookup resolves a MIME or IANA charset name. UTF-8 names resolve to nil,
// which callers treat as a pass-through.
func Lookup(name string) (encoding.Encoding, error) {
	if IsUTF8(name) {
		return nil, nil
	}
	for _, idx := range []*ianaindex.Index{ianaindex.MIME, ianaindex.IANA} {
		enc, err := idx.Encoding(name)
		if err == nil && enc != nil {
			return enc, nil
		}
	}
	return nil, fmt.Errorf("unsupported charset %q", name)
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(raw []byte) []byte {
	return bytes.TrimPrefix(raw, utf8BOM)
}

// Decode converts raw catalog bytes in the named charset to a UTF-8 string.
func Decode(raw []byte, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	if enc == nil {
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid %s byte sequence at offset %d", UTF8, invalidOffset(raw))
		}
		return string(raw), nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return string(out), nil
}

// Encode converts UTF-8 text to the named charset.
func Encode(text string, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return []byte(text), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	return out, nil
}

func invalidOffset(raw []byte) int {
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(raw)
}
