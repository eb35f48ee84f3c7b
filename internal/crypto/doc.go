// Package crypto provides cryptographic operations for propvault.
//
// Value encryption uses AES-256-CBC with PKCS7 padding:
//   - 32-byte key derived from the master password via PBKDF2
//   - 64-byte random salt and 16-byte random IV per encryption operation
//   - output is base64(salt || iv || ciphertext)
//
// Key derivation uses PBKDF2-HMAC-SHA256 with 500,000 iterations. The key
// is re-derived on every operation; this is deliberately expensive, the
// store trades throughput for not keeping derived keys around.
//
// Password verification uses a separate salted hash of the form
// base64(salt) + "$" + base64(derived key). The hash is only used to
// verify a password, never as an encryption key.
//
// Memory safety:
//   - Keep password material in a SecretBuffer and Wipe() it after use
//   - Use ClearBytes() to zero loose sensitive slices
package crypto
