package irc

import "strings"

// CasemapFunc reduces a nick or channel name to its canonical comparison
// form, per the server's negotiated CASEMAPPING ISUPPORT token. Grounded on
// the teacher's CasemapASCII/CasemapRFC1459 (irc/tokens.go) — a supplemental
// enrichment (SPEC_FULL.md §3) layered on top of spec.md's plain nick keys.
type CasemapFunc func(string) string

// CasemapASCII folds 'A'-'Z' to lowercase and leaves everything else alone.
func CasemapASCII(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		if 'A' <= r && r <= 'Z' {
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// CasemapRFC1459 folds 'A'-'Z' to lowercase and additionally maps
// '[', ']', '\\', '~' to '{', '}', '|', '^' per RFC 1459.
func CasemapRFC1459(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case 'A' <= r && r <= 'Z':
			r += 'a' - 'A'
		case r == '[':
			r = '{'
		case r == ']':
			r = '}'
		case r == '\\':
			r = '|'
		case r == '~':
			r = '^'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func casemapFromToken(value string) CasemapFunc {
	switch value {
	case "ascii":
		return CasemapASCII
	default:
		return CasemapRFC1459
	}
}
