package crypto

import "testing"

func TestSecretBufferWipe(t *testing.T) {
	data := []byte("sensitive")
	buf := NewSecretBuffer(data)

	if buf.Len() != len("sensitive") {
		t.Errorf("Len: got %d, want %d", buf.Len(), len("sensitive"))
	}

	buf.Wipe()

	if buf.Len() != 0 {
		t.Errorf("Len after wipe: got %d, want 0", buf.Len())
	}
	for i, b := range data {
		if b != 0 {
			t.Errorf("byte %d not cleared: %v", i, b)
		}
	}

	// Wipe must be idempotent
	buf.Wipe()
}

func TestSecretBufferEqual(t *testing.T) {
	a := NewSecretBufferFromString("secret")
	b := NewSecretBufferFromString("secret")
	c := NewSecretBufferFromString("other")

	if !a.Equal(b) {
		t.Error("buffers with equal contents should compare equal")
	}
	if a.Equal(c) {
		t.Error("buffers with different contents should not compare equal")
	}
}

func TestSecretBufferNil(t *testing.T) {
	var buf *SecretBuffer

	if buf.Len() != 0 || buf.Bytes() != nil || buf.String() != "" {
		t.Error("nil buffer should behave as empty")
	}
	buf.Wipe() // must not panic
}

func TestSecretBufferFromStringCopies(t *testing.T) {
	buf := NewSecretBufferFromString("abc")
	buf.Bytes()[0] = 'x'

	other := NewSecretBufferFromString("abc")
	if buf.Equal(other) {
		t.Error("mutating the buffer should not affect fresh copies")
	}
}
