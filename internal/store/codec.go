package store

import (
	"sort"
	"strings"
)

// Header markers and encryption wrapper. These literals are part of the
// persisted format and must not change.
const (
	headerStartLine = "-------------------------------@@HEADER_START@@-------------------------------------------------------------"
	headerEndLine   = "-------------------------------@@HEADER_END@@-------------------------------------------------------------"

	headerStartToken = "@@HEADER_START@@"
	headerEndToken   = "@@HEADER_END@@"

	encMarker = "{ENC}"
)

// containsHeaderMarkers reports whether text already carries a header
// block, i.e. was written by this codec.
func containsHeaderMarkers(text string) bool {
	return strings.Contains(text, headerStartToken) || strings.Contains(text, headerEndToken)
}

// encode serializes entries: the header block with reserved entries in
// fixed order (only those present), then every other entry sorted by
// canonical key, case-insensitive.
func encode(entries []Entry) string {
	var b strings.Builder

	b.WriteString(headerStartLine)
	b.WriteString("\n")
	for _, name := range reservedOrder {
		if e, ok := findEntry(entries, ParseKey(name)); ok {
			writeEntryLine(&b, e)
		}
	}
	b.WriteString(headerEndLine)
	b.WriteString("\n")

	var body []Entry
	for _, e := range entries {
		if !IsReserved(e.Key) {
			body = append(body, e)
		}
	}
	sort.SliceStable(body, func(i, j int) bool {
		return strings.ToLower(body[i].Key.String()) < strings.ToLower(body[j].Key.String())
	})
	for _, e := range body {
		writeEntryLine(&b, e)
	}

	return b.String()
}

func writeEntryLine(b *strings.Builder, e Entry) {
	b.WriteString(e.Key.String())
	b.WriteString("=")
	if e.Encrypted {
		b.WriteString(encMarker)
		b.WriteString(e.Value)
		b.WriteString(encMarker)
	} else {
		b.WriteString(e.Value)
	}
	b.WriteString("\n")
}

// decode parses file text permissively: header marker lines are
// delimiters, lines without "=" are skipped, only the first "=" splits
// key from value. A value exactly bounded by {ENC} markers is decoded as
// encrypted with the markers stripped; this makes a plaintext value that
// happens to carry both markers ambiguous, which is a known limitation of
// the format.
func decode(text string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if strings.Contains(line, headerStartToken) || strings.Contains(line, headerEndToken) {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := ParseKey(line[:idx])
		value := line[idx+1:]

		encrypted := false
		if len(value) >= 2*len(encMarker) &&
			strings.HasPrefix(value, encMarker) && strings.HasSuffix(value, encMarker) {
			encrypted = true
			value = value[len(encMarker) : len(value)-len(encMarker)]
		}

		entries = append(entries, Entry{Key: key, Value: value, Encrypted: encrypted})
	}
	return entries
}

func findEntry(entries []Entry, key Key) (Entry, bool) {
	for _, e := range entries {
		if e.Key.Equal(key) {
			return e, true
		}
	}
	return Entry{}, false
}
