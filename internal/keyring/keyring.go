// Package keyring adapts the OS keyring to the vault's platform keystore
// capability: an opaque wrap/unwrap of the master password bound to the
// current OS principal.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"
)

const serviceName = "propvault"

// ErrPlatformUnsupported is returned when no OS keyring is available on
// this platform or session.
var ErrPlatformUnsupported = errors.New("platform keystore unsupported")

// Keystore wraps secret material under the current OS principal. Wrap
// returns an opaque handle that is safe to persist in the store file;
// Unwrap recovers the secret from the handle and fails when the handle
// was produced on a different machine or by a different user.
type Keystore interface {
	Available() bool
	Wrap(secret []byte) (handle string, err error)
	Unwrap(handle string) ([]byte, error)
	Delete(handle string) error
}

// System is the Keystore backed by the OS keyring (Keychain on macOS,
// Secret Service on Linux, Credential Manager on Windows). The persisted
// handle is a random identifier naming the keyring item; the secret
// itself never touches the store file.
type System struct{}

// NewSystem returns the OS-backed keystore.
func NewSystem() *System {
	return &System{}
}

// Available probes the keyring with a throwaway item.
func (s *System) Available() bool {
	const probe = "availability-probe"
	if err := gokeyring.Set(serviceName, probe, "ok"); err != nil {
		return false
	}
	_ = gokeyring.Delete(serviceName, probe)
	return true
}

// Wrap stores the secret in the OS keyring under a fresh random handle.
func (s *System) Wrap(secret []byte) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate keystore handle: %w", err)
	}
	handle := hex.EncodeToString(b)

	if err := gokeyring.Set(serviceName, handle, string(secret)); err != nil {
		return "", fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	return handle, nil
}

// Unwrap recovers the secret for a handle. A handle minted on another
// machine or by another user has no keyring item here and fails.
func (s *System) Unwrap(handle string) ([]byte, error) {
	secret, err := gokeyring.Get(serviceName, handle)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return nil, fmt.Errorf("no keyring item for handle: %w", err)
		}
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
	return []byte(secret), nil
}

// Delete removes the keyring item for a handle. Missing items are not an
// error.
func (s *System) Delete(handle string) error {
	if err := gokeyring.Delete(serviceName, handle); err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring item: %w", err)
	}
	return nil
}
