// Package store implements the hierarchical entry store and its
// line-oriented file codec.
//
// Keys are ordered sequences of dot-separated segments compared
// case-insensitively. The store keeps at most one entry per key,
// remembers the order keys were first seen for deterministic iteration,
// and rewrites the whole backing file on every mutation so the file
// always reflects the in-memory state.
//
// The file layout is a header block bounded by marker lines holding the
// reserved metadata entries (password hash, OS-wrapped password, unlock
// self-test, format version), followed by all other entries sorted by
// canonical key. Encrypted values are wrapped in {ENC} markers.
package store
