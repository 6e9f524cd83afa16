package sieparser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"fjacquet/sie-report/internal/parsererror"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultEncodings is the decoding order used when none is configured.
var DefaultEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// charmaps maps normalised encoding names to single-byte decoders.
var charmaps = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"pc8":          charmap.CodePage437,
	"cp437":        charmap.CodePage437,
	"ibm437":       charmap.CodePage437,
}

// Decode converts raw ledger bytes to text, trying each encoding in order.
// UTF-8 is only accepted when the input is valid UTF-8; single-byte
// encodings are rejected when they produce replacement characters. The
// returned error is a *parsererror.EncodingError.
func Decode(data []byte, encodings []string) (string, error) {
	text, _, err := decode(data, encodings)
	return text, err
}

func decode(data []byte, encodings []string) (string, string, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	tried := make([]string, 0, len(encodings))

	for _, name := range encodings {
		norm := normaliseEncoding(name)
		tried = append(tried, name)

		if norm == "utf-8" {
			if utf8.Valid(data) {
				return string(bytes.TrimPrefix(data, utf8BOM)), norm, nil
			}
			continue
		}

		enc, ok := charmaps[norm]
		if !ok {
			continue
		}
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		if bytes.ContainsRune(out, utf8.RuneError) && !bytes.ContainsRune(data, utf8.RuneError) {
			continue
		}
		return string(out), norm, nil
	}

	return "", "", &parsererror.EncodingError{Tried: tried}
}

func normaliseEncoding(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	switch n {
	case "utf8":
		return "utf-8"
	case "windows1252":
		return "windows-1252"
	case "iso8859-1", "iso88591":
		return "iso-8859-1"
	}
	return n
}

// declaresPC8 reports whether the raw export carries the #FORMAT PC8 record.
func declaresPC8(data []byte) bool {
	idx := bytes.Index(data, []byte("#FORMAT"))
	if idx < 0 {
		return false
	}
	rest := data[idx+len("#FORMAT"):]
	if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.EqualFold(strings.TrimSpace(string(rest)), "PC8")
}
