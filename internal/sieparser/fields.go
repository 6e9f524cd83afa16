package sieparser

import "strings"

// splitFields splits a ledger line into whitespace separated fields. Double
// quoted fields may contain spaces and backslash-escaped quotes; the quotes
// are removed. A {...} object list is kept as a single field.
func splitFields(line string) []string {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
		depth   int
		started bool
	)
	flush := func() {
		if started {
			fields = append(fields, cur.String())
			cur.Reset()
			started = false
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote && r == '\\' && i+1 < len(runes) && runes[i+1] == '"':
			cur.WriteRune('"')
			i++
		case r == '"' && depth == 0:
			inQuote = !inQuote
			started = true
		case inQuote:
			cur.WriteRune(r)
		case r == '{':
			depth++
			cur.WriteRune(r)
			started = true
		case r == '}' && depth > 0:
			depth--
			cur.WriteRune(r)
		case depth == 0 && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return fields
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
