package crypto

import "crypto/subtle"

// SecretBuffer owns a mutable byte slice holding sensitive material such
// as the master password or a decrypted value. Callers must Wipe() the
// buffer as soon as they are done with it; there is no finalizer.
type SecretBuffer struct {
	data []byte
}

// NewSecretBuffer takes ownership of b. The caller must not retain or
// reuse b after the call.
func NewSecretBuffer(b []byte) *SecretBuffer {
	return &SecretBuffer{data: b}
}

// NewSecretBufferFromString copies s into a fresh buffer. The string
// itself cannot be wiped; prefer the byte-slice constructor where the
// material originates as bytes.
func NewSecretBufferFromString(s string) *SecretBuffer {
	b := make([]byte, len(s))
	copy(b, s)
	return &SecretBuffer{data: b}
}

// Bytes returns a view of the underlying material. The view is only valid
// until Wipe is called.
func (s *SecretBuffer) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.data
}

// String returns a copy of the material as a string.
func (s *SecretBuffer) String() string {
	if s == nil {
		return ""
	}
	return string(s.data)
}

// Len returns the number of bytes held.
func (s *SecretBuffer) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// Equal compares contents in constant time.
func (s *SecretBuffer) Equal(other *SecretBuffer) bool {
	if s == nil || other == nil {
		return s == nil && other == nil
	}
	return subtle.ConstantTimeCompare(s.data, other.data) == 1
}

// Wipe overwrites every byte and releases the buffer. Safe to call more
// than once and on a nil receiver.
func (s *SecretBuffer) Wipe() {
	if s == nil {
		return
	}
	ClearBytes(s.data)
	s.data = nil
}

// ClearBytes securely clears a byte slice.
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
