package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/propvault/propvault/internal/crypto"
	"github.com/propvault/propvault/internal/store"
)

// Init is the convenience flow. A path without an extension gets
// DefaultExtension appended. When the store does not exist yet, a strong
// password is generated, a secured store is created with it and the
// password is written to the companion plaintext file, a documented
// trade-off so the user can read it once and delete it. An existing
// store is opened via the automatic path, and pre-staged {ENC} values
// are re-encrypted as in Create.
func Init(path string, opts ...Option) (*Vault, error) {
	if filepath.Ext(path) == "" {
		path += DefaultExtension
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		password, err := crypto.GenerateDefaultPassword()
		if err != nil {
			return nil, err
		}
		defer password.Wipe()

		companion := companionPath(path)
		if err := os.WriteFile(companion, []byte(password.String()+"\n"), store.FilePermSecure); err != nil {
			return nil, fmt.Errorf("failed to write companion password file: %w", err)
		}

		v, err := Create(path, password, true, opts...)
		if err != nil {
			return nil, err
		}
		v.log.Warn("generated master password written to " + companion + "; store it safely and delete the file")
		return v, nil
	}

	v, err := Open(path, true, opts...)
	if err != nil {
		return nil, err
	}
	if err := v.reprocessStaged(); err != nil {
		v.Destroy()
		return nil, err
	}
	return v, nil
}

// hasOSEntries reports whether the store carries both OS-keyed reserved
// entries needed for an unlock attempt.
func (v *Vault) hasOSEntries() bool {
	_, wrapped := v.store.Get(store.ParseKey(store.OSPasswordKey))
	_, selftest := v.store.Get(store.ParseKey(store.OSSelfTestKey))
	return wrapped && selftest
}

// osUnlock recovers the master password from the platform keystore. The
// unwrapped bytes are only trusted after the self-test entry decrypts to
// the known constant; a keystore may well unwrap bytes that belong to a
// different store or principal, and silently authenticating with those
// would leave the vault unable to decrypt anything.
func (v *Vault) osUnlock() error {
	wrapped, ok := v.store.Get(store.ParseKey(store.OSPasswordKey))
	if !ok {
		return ErrMasterKeyNotSet
	}

	secret, err := v.ks.Unwrap(wrapped.Value)
	if err != nil {
		return fmt.Errorf("platform keystore unwrap failed: %w", err)
	}

	candidate := crypto.NewSecretBuffer(secret)
	defer candidate.Wipe()
	v.setSession(candidate)

	selftest, ok := v.store.Get(store.ParseKey(store.OSSelfTestKey))
	if !ok {
		v.dropSession()
		return ErrForeignPrincipal
	}
	plaintext, ok := v.Unprotect(selftest.Value)
	if !ok || plaintext.String() != selfTestValue {
		plaintext.Wipe()
		v.dropSession()
		return ErrForeignPrincipal
	}
	plaintext.Wipe()

	v.osUnlocked = true
	v.log.Info("store unlocked via platform keystore")
	return nil
}

// recoverPassword walks the fallback sources in order: the companion
// plaintext file next to the store, then the in-file bootstrap entry.
// A recovered candidate is authoritative, so a missing or mismatching
// verification hash is reconstructed from it rather than rejected. The
// in-file entry is deleted once consumed; it must not remain as a
// standing plaintext secret.
func (v *Vault) recoverPassword() error {
	if candidate, ok := v.readCompanionFile(); ok {
		defer candidate.Wipe()
		if err := v.authenticate(candidate, true); err != nil {
			return err
		}
		v.log.Info("master password recovered from companion file")
		v.wrapIntoKeystore()
		return nil
	}

	if candidate, ok := v.readBootstrapEntry(); ok {
		defer candidate.Wipe()
		if err := v.authenticate(candidate, true); err != nil {
			return err
		}
		if _, err := v.store.Delete(store.ParseKey(store.PlainPasswordKey)); err != nil {
			return fmt.Errorf("failed to remove plaintext bootstrap entry: %w", err)
		}
		v.log.Info("master password recovered from in-file bootstrap entry")
		v.wrapIntoKeystore()
		return nil
	}

	return fmt.Errorf("%w: supply a password, or place it in %s next to the store, or in a plaintext %s entry",
		ErrMasterKeyNotSet, CompanionFileName, store.PlainPasswordKey)
}

func (v *Vault) readCompanionFile() (*crypto.SecretBuffer, bool) {
	data, err := os.ReadFile(companionPath(v.store.Path()))
	if err != nil {
		return nil, false
	}
	password := strings.TrimRight(string(data), "\r\n \t")
	crypto.ClearBytes(data)
	if password == "" {
		return nil, false
	}
	return crypto.NewSecretBufferFromString(password), true
}

// readBootstrapEntry reads the well-known plaintext password entry. An
// {ENC}-marked entry is never accepted: ciphertext is not a password.
func (v *Vault) readBootstrapEntry() (*crypto.SecretBuffer, bool) {
	e, ok := v.store.Get(store.ParseKey(store.PlainPasswordKey))
	if !ok || e.Encrypted || e.Value == "" {
		return nil, false
	}
	return crypto.NewSecretBufferFromString(e.Value), true
}

// wrapIntoKeystore stores the session password in the platform keystore
// and writes the handle plus the self-test ciphertext. Best effort:
// failures are logged and absorbed, the session stays valid through the
// password alone.
func (v *Vault) wrapIntoKeystore() {
	if !v.authenticated || !v.ks.Available() {
		return
	}

	if old, ok := v.store.Get(store.ParseKey(store.OSPasswordKey)); ok {
		if err := v.ks.Delete(old.Value); err != nil {
			v.log.Warn("failed to drop stale keystore item: " + err.Error())
		}
	}

	handle, err := v.ks.Wrap(v.session.Bytes())
	if err != nil {
		v.log.Warn("platform keystore wrap failed: " + err.Error())
		return
	}
	selftest, err := crypto.Encrypt([]byte(selfTestValue), v.session.Bytes())
	if err != nil {
		v.log.Warn("failed to encrypt unlock self-test: " + err.Error())
		return
	}

	if err := v.store.Put(store.Entry{Key: store.ParseKey(store.OSPasswordKey), Value: handle}); err != nil {
		v.log.Warn("failed to persist keystore handle: " + err.Error())
		return
	}
	if err := v.store.Put(store.Entry{Key: store.ParseKey(store.OSSelfTestKey), Value: selftest, Encrypted: true}); err != nil {
		v.log.Warn("failed to persist unlock self-test: " + err.Error())
		return
	}
	v.log.Info("master password wrapped into platform keystore")
}

// OSKeyStored reports whether the store carries a wrapped master
// password for automatic unlock.
func (v *Vault) OSKeyStored() bool {
	return v.hasOSEntries()
}

// ForgetOSKey removes the wrapped master password from the platform
// keystore and drops the OS-keyed entries from the store. Open sessions
// stay valid; only automatic unlock is disabled.
func (v *Vault) ForgetOSKey() error {
	if v.closed {
		return ErrClosed
	}

	if wrapped, ok := v.store.Get(store.ParseKey(store.OSPasswordKey)); ok {
		if err := v.ks.Delete(wrapped.Value); err != nil {
			v.log.Warn("failed to delete keystore item: " + err.Error())
		}
	}
	if _, err := v.store.Delete(store.ParseKey(store.OSPasswordKey)); err != nil {
		return fmt.Errorf("failed to remove keystore handle entry: %w", err)
	}
	if _, err := v.store.Delete(store.ParseKey(store.OSSelfTestKey)); err != nil {
		return fmt.Errorf("failed to remove unlock self-test entry: %w", err)
	}
	v.osUnlocked = false
	v.log.Info("automatic unlock disabled")
	return nil
}

func (v *Vault) dropSession() {
	if v.session != nil {
		v.session.Wipe()
		v.session = nil
	}
	v.authenticated = false
	v.osUnlocked = false
}

func companionPath(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), CompanionFileName)
}
