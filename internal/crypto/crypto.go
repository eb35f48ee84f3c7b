package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize     = 64     // Salt size in bytes, for both hashing and encryption
	KeySize      = 32     // AES-256 key size
	IVSize       = aes.BlockSize
	DefaultIters = 500000 // PBKDF2 iterations
)

var (
	ErrMalformedHash    = errors.New("malformed password hash")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// DeriveKey derives an AES-256 key from a password and salt using
// PBKDF2-HMAC-SHA256.
func DeriveKey(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New)
}

// SaltedHash produces a verification hash for the password with a fresh
// random salt: base64(salt) + "$" + base64(derived key). The result is
// safe to persist; it is never used as an encryption key.
func SaltedHash(password []byte) (string, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return "", err
	}
	key := DeriveKey(password, salt, DefaultIters)
	defer ClearBytes(key)

	return base64.StdEncoding.EncodeToString(salt) + "$" + base64.StdEncoding.EncodeToString(key), nil
}

// Verify checks a password against a hash produced by SaltedHash.
func Verify(password []byte, stored string) (bool, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false, ErrMalformedHash
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, ErrMalformedHash
	}

	key := DeriveKey(password, salt, DefaultIters)
	defer ClearBytes(key)

	return subtle.ConstantTimeCompare(key, want) == 1, nil
}

// Encrypt encrypts plaintext under the password using AES-256-CBC with
// PKCS7 padding. Salt and IV are freshly random per call and the key is
// re-derived every time, so the same plaintext/password pair never yields
// the same ciphertext twice. Output is base64(salt || iv || ciphertext).
func Encrypt(plaintext, password []byte) (string, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return "", err
	}
	iv, err := GenerateRandom(IVSize)
	if err != nil {
		return "", err
	}

	key := DeriveKey(password, salt, DefaultIters)
	defer ClearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	defer ClearBytes(padded)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	blob := make([]byte, 0, SaltSize+IVSize+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, iv...)
	blob = append(blob, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. A wrong password and corrupted data are
// indistinguishable; both return ErrDecryptionFailed.
func Decrypt(encoded string, password []byte) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if len(blob) < SaltSize+IVSize+aes.BlockSize {
		return nil, ErrDecryptionFailed
	}

	salt := blob[:SaltSize]
	iv := blob[SaltSize : SaltSize+IVSize]
	ciphertext := blob[SaltSize+IVSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrDecryptionFailed
	}

	key := DeriveKey(password, salt, DefaultIters)
	defer ClearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		ClearBytes(padded)
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes.
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("invalid padding")
	}
	if !bytes.Equal(data[len(data)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, errors.New("invalid padding")
	}
	return data[:len(data)-n], nil
}
