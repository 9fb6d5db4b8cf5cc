// Package charset converts payload text to and from the byte encodings
// printers accept.
package charset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// UTF8 is the name of the pass-through encoding.
const UTF8 = "utf-8"

// replacement stands in for characters the target charset cannot hold.
const replacement = '?'

var legacy = map[string]*charmap.Charmap{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"cp437":        charmap.CodePage437,
	"ibm437":       charmap.CodePage437,
}

// Supported reports whether name is a known encoding.
func Supported(name string) bool {
	n := normalize(name)
	if n == UTF8 {
		return true
	}
	_, ok := legacy[n]
	return ok
}

// Encode converts text to the named charset one character at a time.
// Characters the charset cannot represent become '?'.
func Encode(name, text string) ([]byte, error) {
	n := normalize(name)
	if n == UTF8 {
		return []byte(text), nil
	}
	cm, ok := legacy[n]
	if !ok {
		return nil, fmt.Errorf("unsupported charset: %s", name)
	}
	out := make([]byte, 0, len(text))
	for _, r := range text {
		b, ok := cm.EncodeRune(r)
		if !ok {
			b = replacement
		}
		out = append(out, b)
	}
	return out, nil
}

// Decode turns payload bytes into text. Valid UTF-8 is taken as is;
// anything else is read as the fallback 8-bit charset.
func Decode(data []byte, fallback string) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	cm, ok := legacy[normalize(fallback)]
	if !ok {
		return "", fmt.Errorf("unsupported charset: %s", fallback)
	}
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(cm.DecodeByte(c))
	}
	return b.String(), nil
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf8", UTF8:
		return UTF8
	}
	return n
}
