package debom

import (
	"bytes"
	"fmt"
	"sort"
)

// Encoding identifies one of the supported text encodings.
type Encoding string

// Supported encodings.
const (
	UTF8    Encoding = "utf-8"
	UTF16LE Encoding = "utf-16le"
	UTF16BE Encoding = "utf-16be"
)

// signatures maps each supported encoding to its exact BOM byte sequence.
var signatures = map[Encoding][]byte{
	UTF8:    {0xEF, 0xBB, 0xBF},
	UTF16LE: {0xFF, 0xFE},
	UTF16BE: {0xFE, 0xFF},
}

// ParseEncoding validates s against the supported encoding identifiers.
func ParseEncoding(s string) (Encoding, error) {
	enc := Encoding(s)
	if _, ok := signatures[enc]; !ok {
		return "", fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedEncoding, s, Encodings())
	}
	return enc, nil
}

// Encodings returns a sorted list of all supported encoding identifiers.
func Encodings() []string {
	names := make([]string, 0, len(signatures))
	for enc := range signatures {
		names = append(names, string(enc))
	}
	sort.Strings(names)
	return names
}

// Signature returns the BOM byte sequence for the encoding, or
// ErrUnsupportedEncoding if the encoding is not one of the supported set.
func (e Encoding) Signature() ([]byte, error) {
	sig, ok := signatures[e]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, string(e))
	}
	return sig, nil
}

// Strip removes the BOM signature of enc from the front of data.
//
// It returns the content with the signature removed and stripped=true when
// data begins with the full signature. Otherwise it returns data unchanged
// and stripped=false; input shorter than the signature (including empty
// input) is treated as "no BOM", not an error. The signature is never
// partially removed.
//
// Strip performs no I/O.
func Strip(data []byte, enc Encoding) (out []byte, stripped bool, err error) {
	sig, err := enc.Signature()
	if err != nil {
		return data, false, err
	}
	if !bytes.HasPrefix(data, sig) {
		return data, false, nil
	}
	return data[len(sig):], true, nil
}
