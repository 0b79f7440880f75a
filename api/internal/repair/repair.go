// Package repair recovers a structured JSON value from raw LLM output.
//
// Model text is unreliable input: the JSON payload may be surrounded by
// prose, contain raw control characters inside string literals, or carry
// near-miss syntax like trailing commas. The pipeline here fixes exactly
// those classes of breakage and nothing more — it is not a JSON5 parser.
package repair

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Trailing comma before a closing brace/bracket. The whitespace between
// the comma and the closer is kept so valid input passes through untouched.
var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// U+2028/U+2029 are legal in JS source strings but break strict JSON
// consumers; rewrite them to a literal backslash-n escape.
var lineSeparators = strings.NewReplacer("\u2028", `\n`, "\u2029", `\n`)

// ExtractObject returns the slice of s from the first '{' to the last '}'
// inclusive. The second return is false when no such span exists. No brace
// balancing is attempted; a wrong span is caught later by the strict parse.
func ExtractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// Sanitize applies the structural fixes that are safe without tracking
// string context: Unicode line/paragraph separators and trailing commas.
func Sanitize(s string) string {
	s = lineSeparators.Replace(s)
	return trailingComma.ReplaceAllString(s, "$1")
}

// EscapeControl walks s once and rewrites raw control characters found
// inside double-quoted string literals into their escaped forms: newline
// becomes \n, tab becomes \t, carriage returns are dropped. Characters
// outside strings and already-escaped sequences pass through unchanged.
//
// Iterating bytes is safe here: every character the state machine cares
// about is ASCII, and UTF-8 never embeds ASCII bytes in multi-byte runes.
func EscapeControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		if escaped {
			// previous byte was a backslash; this one must not be reinterpreted
			b.WriteByte(c)
			escaped = false
			continue
		}

		switch c {
		case '\\':
			b.WriteByte(c)
			escaped = true
		case '"':
			b.WriteByte(c)
			inString = false
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			// CRLF artifact, drop it
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Repair runs the full pipeline: extract a candidate object, sanitize it,
// escape in-string control characters, then strict-parse. The second
// return is false when no candidate exists or the parse still fails;
// callers fall back to wrapping the raw text. Repair never returns an
// error — a failed best-effort repair is an expected outcome.
func Repair(raw string) (any, bool) {
	candidate, ok := ExtractObject(raw)
	if !ok {
		return nil, false
	}
	candidate = EscapeControl(Sanitize(candidate))

	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, false
	}
	return v, true
}
