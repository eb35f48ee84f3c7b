package store

import "strings"

// Key is an ordered sequence of path segments forming a hierarchical
// entry name, e.g. "app.database.password". Segment comparison is
// case-insensitive. The zero value (no segments) names the unlabeled
// root group.
type Key struct {
	segments []string
}

// ParseKey splits a dotted string into a Key. Empty input yields a key
// with zero segments. No validation is performed beyond the split; a
// string with doubled dots round-trips with its empty segments intact.
func ParseKey(s string) Key {
	if s == "" {
		return Key{}
	}
	return Key{segments: strings.Split(s, ".")}
}

// NewKey builds a Key from explicit segments.
func NewKey(segments ...string) Key {
	return Key{segments: segments}
}

// String returns the canonical dotted form. The empty key yields "".
func (k Key) String() string {
	return strings.Join(k.segments, ".")
}

// Len returns the number of segments.
func (k Key) Len() int {
	return len(k.segments)
}

// IsEmpty reports whether the key has no segments.
func (k Key) IsEmpty() bool {
	return len(k.segments) == 0
}

// Equal reports whether both keys have the same segments, compared
// case-insensitively.
func (k Key) Equal(other Key) bool {
	if len(k.segments) != len(other.segments) {
		return false
	}
	for i := range k.segments {
		if !strings.EqualFold(k.segments[i], other.segments[i]) {
			return false
		}
	}
	return true
}

// IsSubkeyOf reports whether prefix is a strict, shorter, case-insensitive
// prefix of k. The empty prefix matches every key. Two keys that each
// consist of a single empty segment match each other.
func (k Key) IsSubkeyOf(prefix Key) bool {
	if prefix.IsEmpty() {
		return true
	}
	if len(k.segments) == 1 && len(prefix.segments) == 1 &&
		k.segments[0] == "" && prefix.segments[0] == "" {
		return true
	}
	if len(prefix.segments) >= len(k.segments) {
		return false
	}
	return k.hasPrefix(prefix)
}

// IsChildOf reports whether k is a leaf directly inside one immediate
// sub-group of group, i.e. k has exactly two more segments than group and
// starts with it. Used to enumerate next-level group names.
func (k Key) IsChildOf(group Key) bool {
	if len(k.segments) != len(group.segments)+2 {
		return false
	}
	return k.hasPrefix(group)
}

// Label returns all segments except the last, joined with dots. A
// single-segment key (and the empty key) has the empty label, placing it
// in the root group.
func (k Key) Label() string {
	if len(k.segments) <= 1 {
		return ""
	}
	return strings.Join(k.segments[:len(k.segments)-1], ".")
}

// Name returns the last segment, or "" for the empty key.
func (k Key) Name() string {
	if len(k.segments) == 0 {
		return ""
	}
	return k.segments[len(k.segments)-1]
}

// fold returns the lower-cased canonical form used for map lookups.
func (k Key) fold() string {
	return strings.ToLower(k.String())
}

func (k Key) hasPrefix(prefix Key) bool {
	for i := range prefix.segments {
		if !strings.EqualFold(k.segments[i], prefix.segments[i]) {
			return false
		}
	}
	return true
}
