// Package vault orchestrates the secured store: session establishment,
// value protection, OS-keyed unlock and the password recovery chain.
package vault

import (
	"errors"
	"fmt"

	"github.com/propvault/propvault/internal/audit"
	"github.com/propvault/propvault/internal/crypto"
	"github.com/propvault/propvault/internal/keyring"
	"github.com/propvault/propvault/internal/store"
)

const (
	// MinPasswordLength is the minimum accepted master password length.
	MinPasswordLength = 12

	// CompanionFileName is the plaintext password file looked up next to
	// the store during recovery, and written by Init for generated
	// passwords. The name tells the user what to do with it.
	CompanionFileName = "master_password_plain_text_store_and_delete.txt"

	// DefaultExtension is appended to extension-less store paths by Init.
	DefaultExtension = ".properties"

	// selfTestValue is the known plaintext behind the OS-unlock self-test
	// ciphertext. Decrypting the self-test entry to this exact string
	// proves an OS-unwrapped password actually belongs to this store.
	selfTestValue = "propvault-password-check"
)

var (
	ErrPasswordTooShort  = errors.New("master password too short")
	ErrIncorrectPassword = errors.New("incorrect master password")
	ErrMasterKeyNotSet   = errors.New("no master password available")
	ErrSecureModeNotOn   = errors.New("secure mode not on")
	ErrForeignPrincipal  = errors.New("encrypted with other user")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrValueUnavailable  = errors.New("value cannot be decrypted")
	ErrClosed            = errors.New("vault is closed")
)

// Vault is an open, possibly authenticated handle over one store file.
// It is not safe for concurrent use; hosts managing several stores open
// one Vault per store. Callers must Destroy() the vault on every exit
// path, there is no implicit wipe.
type Vault struct {
	store *store.Store
	ks    keyring.Keystore
	log   audit.Logger

	session       *crypto.SecretBuffer
	authenticated bool
	osUnlocked    bool
	closed        bool
}

// Option configures a Vault at construction.
type Option func(*Vault)

// WithLogger directs vault diagnostics to l.
func WithLogger(l audit.Logger) Option {
	return func(v *Vault) { v.log = l }
}

// WithKeystore replaces the platform keystore, mainly for tests.
func WithKeystore(ks keyring.Keystore) Option {
	return func(v *Vault) { v.ks = ks }
}

func newVault(st *store.Store, opts []Option) *Vault {
	v := &Vault{
		store: st,
		ks:    keyring.NewSystem(),
		log:   audit.NoOp{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Create initializes a new store at path. When secured, the password must
// be at least MinPasswordLength long; the verification hash is written,
// the session is established and, best effort, the password is wrapped
// into the platform keystore. Pre-staged {ENC} values present in a
// marker-less file at path are re-encrypted under the new session key.
// An unsecured store is returned unauthenticated and cannot encrypt.
func Create(path string, password *crypto.SecretBuffer, secured bool, opts ...Option) (*Vault, error) {
	if secured && password.Len() < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	st, err := store.Create(path)
	if err != nil {
		return nil, err
	}
	v := newVault(st, opts)

	if err := st.Put(store.Entry{Key: store.ParseKey(store.VersionKey), Value: store.FormatVersion}); err != nil {
		return nil, err
	}

	if !secured {
		return v, nil
	}

	hash, err := crypto.SaltedHash(password.Bytes())
	if err != nil {
		return nil, err
	}
	if err := st.Put(store.Entry{Key: store.ParseKey(store.HashKey), Value: hash}); err != nil {
		return nil, err
	}

	v.setSession(password)
	v.wrapIntoKeystore()

	if err := v.reprocessStaged(); err != nil {
		return nil, err
	}
	return v, nil
}

// OpenWithPassword opens an existing store and verifies the password
// against the stored hash. On success the session is established and,
// opportunistically, the password is re-wrapped into the platform
// keystore so future opens on this OS principal need no password.
func OpenWithPassword(path string, password *crypto.SecretBuffer, opts ...Option) (*Vault, error) {
	st, err := store.Open(path, true)
	if err != nil {
		return nil, err
	}
	v := newVault(st, opts)

	if err := v.authenticate(password, false); err != nil {
		return nil, err
	}
	v.wrapIntoKeystore()
	return v, nil
}

// Open is the automatic path. With requireSecured unset it returns an
// unauthenticated handle that can list and read plaintext entries but
// never decrypt. Otherwise it attempts, in order: OS-keyed unlock, the
// companion password file, and the in-file plaintext bootstrap entry.
// When every source is exhausted it fails with ErrMasterKeyNotSet.
func Open(path string, requireSecured bool, opts ...Option) (*Vault, error) {
	st, err := store.Open(path, true)
	if err != nil {
		return nil, err
	}
	v := newVault(st, opts)

	if !requireSecured {
		return v, nil
	}

	if v.hasOSEntries() && v.ks.Available() {
		if err := v.osUnlock(); err == nil {
			return v, nil
		} else if errors.Is(err, ErrForeignPrincipal) {
			v.log.Warn("OS-keyed unlock rejected: " + err.Error())
		} else {
			v.log.Warn("OS-keyed unlock failed: " + err.Error())
		}
	}

	if err := v.recoverPassword(); err != nil {
		return nil, err
	}
	return v, nil
}

// Protect encrypts value under the session key and wipes the input.
func (v *Vault) Protect(value *crypto.SecretBuffer) (string, error) {
	if v.closed {
		return "", ErrClosed
	}
	if !v.authenticated {
		return "", ErrSecureModeNotOn
	}
	defer value.Wipe()
	return crypto.Encrypt(value.Bytes(), v.session.Bytes())
}

// Unprotect decrypts ciphertext under the session key. It reports false,
// not an error, when no session key is set or decryption fails; the
// vault may be legitimately open without a key in listing mode.
func (v *Vault) Unprotect(ciphertext string) (*crypto.SecretBuffer, bool) {
	if v.closed || v.session == nil {
		return nil, false
	}
	plaintext, err := crypto.Decrypt(ciphertext, v.session.Bytes())
	if err != nil {
		return nil, false
	}
	return crypto.NewSecretBuffer(plaintext), true
}

// Get looks up an entry value. Absent keys fail with ErrEntryNotFound;
// encrypted entries that cannot be decrypted (no session, wrong key,
// corruption) fail with ErrValueUnavailable. Callers must report these
// two cases differently. The returned buffer is owned by the caller.
func (v *Vault) Get(key string) (*crypto.SecretBuffer, error) {
	if v.closed {
		return nil, ErrClosed
	}
	e, ok := v.store.Get(store.ParseKey(key))
	if !ok {
		return nil, ErrEntryNotFound
	}
	if e.Encrypted {
		buf, ok := v.Unprotect(e.Value)
		if !ok {
			return nil, ErrValueUnavailable
		}
		return buf, nil
	}
	return crypto.NewSecretBufferFromString(e.Value), nil
}

// Add upserts an entry and persists. Encrypting requires an
// authenticated session; the plaintext is wiped after encryption.
func (v *Vault) Add(key, value string, encrypt bool) error {
	if v.closed {
		return ErrClosed
	}
	stored := value
	encrypted := false
	if encrypt {
		ct, err := v.Protect(crypto.NewSecretBufferFromString(value))
		if err != nil {
			return err
		}
		stored = ct
		encrypted = true
	}
	return v.store.Put(store.Entry{Key: store.ParseKey(key), Value: stored, Encrypted: encrypted})
}

// Delete removes the exactly matching entry and persists. Reports
// whether anything was removed. Reserved bookkeeping entries are not
// deletable through here.
func (v *Vault) Delete(key string) (bool, error) {
	if v.closed {
		return false, ErrClosed
	}
	k := store.ParseKey(key)
	if store.IsReserved(k) {
		return false, nil
	}
	return v.store.Delete(k)
}

// DeletePrefix removes the matching entry and every entry below it.
func (v *Vault) DeletePrefix(key string) (int, error) {
	if v.closed {
		return 0, ErrClosed
	}
	return v.store.DeletePrefix(store.ParseKey(key))
}

// Keys lists canonical non-reserved keys.
func (v *Vault) Keys() []string {
	if v.closed {
		return nil
	}
	return v.store.Keys()
}

// EntriesUnder lists non-reserved entries below the prefix.
func (v *Vault) EntriesUnder(prefix string) []store.Entry {
	if v.closed {
		return nil
	}
	return v.store.EntriesUnder(store.ParseKey(prefix))
}

// Labels lists all group labels.
func (v *Vault) Labels() []string {
	if v.closed {
		return nil
	}
	return v.store.Labels()
}

// ChildLabels lists immediate child groups below the prefix.
func (v *Vault) ChildLabels(prefix string) []string {
	if v.closed {
		return nil
	}
	return v.store.ChildLabels(store.ParseKey(prefix))
}

// Authenticated reports whether a session key is established.
func (v *Vault) Authenticated() bool {
	return v.authenticated && !v.closed
}

// OSUnlocked reports whether the session was established via the
// platform keystore rather than an explicit password.
func (v *Vault) OSUnlocked() bool {
	return v.osUnlocked && !v.closed
}

// Secured reports whether the store carries a verification hash.
func (v *Vault) Secured() bool {
	if v.closed {
		return false
	}
	_, ok := v.store.Get(store.ParseKey(store.HashKey))
	return ok
}

// Path returns the backing file path.
func (v *Vault) Path() string {
	if v.store == nil {
		return ""
	}
	return v.store.Path()
}

// ChangeMasterPassword installs a verification hash for next. When the
// store was never secured and current is nil this bootstraps security;
// otherwise current must verify against the stored hash. Existing
// encrypted values are NOT re-encrypted: they stay decryptable only
// under the password in effect when they were written.
func (v *Vault) ChangeMasterPassword(current, next *crypto.SecretBuffer) error {
	if v.closed {
		return ErrClosed
	}
	if next.Len() < MinPasswordLength {
		return ErrPasswordTooShort
	}

	stored, secured := v.store.Get(store.ParseKey(store.HashKey))
	if secured {
		if current == nil {
			return ErrIncorrectPassword
		}
		ok, err := crypto.Verify(current.Bytes(), stored.Value)
		if err != nil {
			return err
		}
		if !ok {
			return ErrIncorrectPassword
		}
	}

	hash, err := crypto.SaltedHash(next.Bytes())
	if err != nil {
		return err
	}
	if err := v.store.Put(store.Entry{Key: store.ParseKey(store.HashKey), Value: hash}); err != nil {
		return err
	}

	v.setSession(next)
	v.wrapIntoKeystore()
	return nil
}

// Destroy wipes the session key and closes the vault. Idempotent; the
// handle is unusable afterwards.
func (v *Vault) Destroy() {
	if v.session != nil {
		v.session.Wipe()
		v.session = nil
	}
	v.authenticated = false
	v.osUnlocked = false
	v.closed = true
	v.store = nil
}

// setSession copies the password into a vault-owned buffer. The caller
// keeps ownership of its own copy.
func (v *Vault) setSession(password *crypto.SecretBuffer) {
	if v.session != nil {
		v.session.Wipe()
	}
	b := make([]byte, password.Len())
	copy(b, password.Bytes())
	v.session = crypto.NewSecretBuffer(b)
	v.authenticated = true
}

// authenticate verifies the password against the stored hash and
// establishes the session. With reconstruct set, a missing hash or a
// mismatch installs a fresh hash from the password instead of failing;
// only the recovery chain asserts that, and only for candidates from
// sources the user already controls.
func (v *Vault) authenticate(password *crypto.SecretBuffer, reconstruct bool) error {
	stored, ok := v.store.Get(store.ParseKey(store.HashKey))
	if !ok {
		if !reconstruct {
			return ErrMasterKeyNotSet
		}
		return v.reconstructHash(password)
	}

	match, err := crypto.Verify(password.Bytes(), stored.Value)
	if err != nil {
		return err
	}
	if !match {
		if !reconstruct {
			return ErrIncorrectPassword
		}
		v.log.Warn("stored password hash does not match recovered password, reconstructing")
		return v.reconstructHash(password)
	}

	v.setSession(password)
	return nil
}

func (v *Vault) reconstructHash(password *crypto.SecretBuffer) error {
	hash, err := crypto.SaltedHash(password.Bytes())
	if err != nil {
		return err
	}
	if err := v.store.Put(store.Entry{Key: store.ParseKey(store.HashKey), Value: hash}); err != nil {
		return err
	}
	v.setSession(password)
	v.log.Info("reconstructed master password verification hash")
	return nil
}

// reprocessStaged re-encrypts entries that were pre-staged with literal
// {ENC} markers before the store had a key. An encrypted entry whose
// value does not decrypt under the session key is treated as staged
// plaintext.
func (v *Vault) reprocessStaged() error {
	if !v.authenticated {
		return nil
	}
	return v.store.ForEach(func(e store.Entry) error {
		if !e.Encrypted {
			return nil
		}
		if buf, ok := v.Unprotect(e.Value); ok {
			buf.Wipe()
			return nil
		}
		ct, err := crypto.Encrypt([]byte(e.Value), v.session.Bytes())
		if err != nil {
			return fmt.Errorf("failed to encrypt staged value for %s: %w", e.Key, err)
		}
		v.log.Info("encrypted staged value for " + e.Key.String())
		return v.store.Put(store.Entry{Key: e.Key, Value: ct, Encrypted: true})
	})
}
