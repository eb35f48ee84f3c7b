package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/propvault/propvault/internal/store"
)

func TestOSUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.properties")
	ks := newFakeKeystore(true)

	password := testPassword()
	v, err := Create(path, password, true, WithKeystore(ks))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	password.Wipe()
	v.Destroy()

	// Reopen without any password: the keystore supplies it.
	reopened, err := Open(path, true, WithKeystore(ks))
	if err != nil {
		t.Fatalf("automatic Open failed: %v", err)
	}
	defer reopened.Destroy()

	if !reopened.Authenticated() || !reopened.OSUnlocked() {
		t.Error("vault should be OS-unlocked")
	}

	if err := reopened.Add("app.db.pass", "hunter2", true); err != nil {
		t.Fatalf("Add after OS unlock failed: %v", err)
	}
	value, err := reopened.Get("app.db.pass")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer value.Wipe()
	if value.String() != "hunter2" {
		t.Errorf("value: got %q, want %q", value.String(), "hunter2")
	}
}

func TestOSUnlockForeignPrincipal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.properties")
	ks := newFakeKeystore(true)

	password := testPassword()
	v, err := Create(path, password, true, WithKeystore(ks))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	password.Wipe()
	v.Destroy()

	// Another principal's keystore unwraps different bytes for the same
	// handle. The self-test must catch that before the session is trusted.
	for handle := range ks.items {
		ks.items[handle] = "EntirelyDifferentPw!"
	}

	if _, err := Open(path, true, WithKeystore(ks)); !errors.Is(err, ErrMasterKeyNotSet) {
		t.Errorf("expected fallthrough to ErrMasterKeyNotSet, got %v", err)
	}
}

func TestRecoveryFromCompanionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.properties")

	createSecured(t, path).Destroy()

	companion := filepath.Join(dir, CompanionFileName)
	if err := os.WriteFile(companion, []byte("Sup3rSecurePass!!\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	v, err := Open(path, true, WithKeystore(newFakeKeystore(false)))
	if err != nil {
		t.Fatalf("Open via companion file failed: %v", err)
	}
	defer v.Destroy()

	if !v.Authenticated() {
		t.Error("vault should be authenticated via the companion file")
	}
	if v.OSUnlocked() {
		t.Error("companion recovery should not report OS unlock")
	}
}

func TestRecoveryReconstructsMissingHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.properties")

	// A store whose hash entry was lost: version only.
	st, err := store.Create(path)
	if err != nil {
		t.Fatalf("store.Create failed: %v", err)
	}
	if err := st.Put(store.Entry{Key: store.ParseKey(store.VersionKey), Value: store.FormatVersion}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	companion := filepath.Join(dir, CompanionFileName)
	if err := os.WriteFile(companion, []byte("Sup3rSecurePass!!\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	v, err := Open(path, true, WithKeystore(newFakeKeystore(false)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer v.Destroy()

	if !v.Secured() {
		t.Error("hash entry should have been reconstructed from the trusted candidate")
	}

	// The reconstructed hash must verify the recovered password.
	v.Destroy()
	password := testPassword()
	defer password.Wipe()
	reopened, err := OpenWithPassword(path, password, WithKeystore(newFakeKeystore(false)))
	if err != nil {
		t.Fatalf("reopen after reconstruction failed: %v", err)
	}
	reopened.Destroy()
}

func TestRecoveryFromBootstrapEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.properties")

	createSecured(t, path).Destroy()

	// Embed the plaintext bootstrap entry directly in the store file.
	st, err := store.Open(path, true)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	if err := st.Put(store.Entry{Key: store.ParseKey(store.PlainPasswordKey), Value: "Sup3rSecurePass!!"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	v, err := Open(path, true, WithKeystore(newFakeKeystore(false)))
	if err != nil {
		t.Fatalf("Open via bootstrap entry failed: %v", err)
	}
	defer v.Destroy()

	if !v.Authenticated() {
		t.Error("vault should be authenticated via the bootstrap entry")
	}

	// The standing plaintext secret must be gone afterwards.
	reread, err := store.Open(path, true)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	if _, ok := reread.Get(store.ParseKey(store.PlainPasswordKey)); ok {
		t.Error("bootstrap entry should have been deleted after use")
	}
}

func TestRecoveryRejectsEncryptedBootstrapEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.properties")

	v := createSecured(t, path)
	// An {ENC}-marked value under the bootstrap key is ciphertext, not a
	// password, and must not be accepted as a candidate.
	if err := v.Add(store.PlainPasswordKey, "Sup3rSecurePass!!", true); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	v.Destroy()

	if _, err := Open(path, true, WithKeystore(newFakeKeystore(false))); !errors.Is(err, ErrMasterKeyNotSet) {
		t.Errorf("expected ErrMasterKeyNotSet, got %v", err)
	}
}

func TestRecoveryExhausted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.properties")
	createSecured(t, path).Destroy()

	_, err := Open(path, true, WithKeystore(newFakeKeystore(false)))
	if !errors.Is(err, ErrMasterKeyNotSet) {
		t.Fatalf("expected ErrMasterKeyNotSet, got %v", err)
	}
}

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.properties")

	v := createSecured(t, path)
	if err := v.Add("app.db.host", "localhost", false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	v.Destroy()

	readonly, err := Open(path, false, WithKeystore(newFakeKeystore(false)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer readonly.Destroy()

	if readonly.Authenticated() {
		t.Error("read-only handle should not be authenticated")
	}
	value, err := readonly.Get("app.db.host")
	if err != nil {
		t.Fatalf("plaintext Get failed: %v", err)
	}
	defer value.Wipe()
	if value.String() != "localhost" {
		t.Errorf("value: got %q, want %q", value.String(), "localhost")
	}
}

func TestInitFreshStore(t *testing.T) {
	dir := t.TempDir()
	// Extension-less path gets .properties appended.
	v, err := Init(filepath.Join(dir, "mystore"), WithKeystore(newFakeKeystore(false)))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer v.Destroy()

	if v.Path() != filepath.Join(dir, "mystore"+DefaultExtension) {
		t.Errorf("path: got %q", v.Path())
	}
	if !v.Authenticated() || !v.Secured() {
		t.Error("Init should return a secured, authenticated vault")
	}

	// The generated password lands in the companion file and must open
	// the store.
	data, err := os.ReadFile(filepath.Join(dir, CompanionFileName))
	if err != nil {
		t.Fatalf("companion file missing: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("companion file empty")
	}

	v.Destroy()
	reopened, err := Init(filepath.Join(dir, "mystore"), WithKeystore(newFakeKeystore(false)))
	if err != nil {
		t.Fatalf("Init on existing store failed: %v", err)
	}
	defer reopened.Destroy()
	if !reopened.Authenticated() {
		t.Error("Init should recover the password from the companion file")
	}
}
