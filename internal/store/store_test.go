package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemoryPutGet(t *testing.T) {
	s := NewMemory()

	if err := s.Put(Entry{Key: ParseKey("app.db.pass"), Value: "hunter2"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	e, ok := s.Get(ParseKey("APP.DB.PASS"))
	if !ok {
		t.Fatal("Get with different case should find the entry")
	}
	if e.Value != "hunter2" {
		t.Errorf("value: got %q, want %q", e.Value, "hunter2")
	}

	if _, ok := s.Get(ParseKey("app.db.user")); ok {
		t.Error("Get of absent key should report not found")
	}
}

func TestPutReplaces(t *testing.T) {
	s := NewMemory()

	if err := s.Put(Entry{Key: ParseKey("app.db.pass"), Value: "old"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(Entry{Key: ParseKey("App.DB.Pass"), Value: "new"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if got := len(s.Keys()); got != 1 {
		t.Fatalf("expected 1 key after upsert, got %d", got)
	}
	e, _ := s.Get(ParseKey("app.db.pass"))
	if e.Value != "new" {
		t.Errorf("value: got %q, want %q", e.Value, "new")
	}
}

func TestReservedExcluded(t *testing.T) {
	s := NewMemory()

	for _, k := range []string{HashKey, OSPasswordKey, OSSelfTestKey, VersionKey} {
		if err := s.Put(Entry{Key: ParseKey(k), Value: "x"}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := s.Put(Entry{Key: ParseKey("app.db.pass"), Value: "hunter2"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	keys := s.Keys()
	if len(keys) != 1 || keys[0] != "app.db.pass" {
		t.Errorf("reserved keys leaked into Keys(): %v", keys)
	}
	if got := len(s.EntriesUnder(ParseKey(""))); got != 1 {
		t.Errorf("reserved keys leaked into EntriesUnder: %d entries", got)
	}
}

func TestEntriesUnderAndLabels(t *testing.T) {
	s := NewMemory()
	for _, k := range []string{"app.db.pass", "app.db.host", "app.cache.url", "standalone"} {
		if err := s.Put(Entry{Key: ParseKey(k), Value: "v"}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	under := s.EntriesUnder(ParseKey("app.db"))
	if len(under) != 2 {
		t.Fatalf("EntriesUnder(app.db): got %d entries, want 2", len(under))
	}

	labels := s.Labels()
	want := []string{"", "app.cache", "app.db"}
	if len(labels) != len(want) {
		t.Fatalf("Labels: got %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("Labels[%d]: got %q, want %q", i, labels[i], want[i])
		}
	}

	children := s.ChildLabels(ParseKey("app"))
	if len(children) != 2 || children[0] != "app.cache" || children[1] != "app.db" {
		t.Errorf("ChildLabels(app): got %v", children)
	}
}

func TestDeletePrefix(t *testing.T) {
	s := NewMemory()
	for _, k := range []string{"app.db.pass", "app.db.host", "app.cache.url"} {
		if err := s.Put(Entry{Key: ParseKey(k), Value: "v"}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	n, err := s.DeletePrefix(ParseKey("app.db"))
	if err != nil {
		t.Fatalf("DeletePrefix failed: %v", err)
	}
	if n != 2 {
		t.Errorf("removed: got %d, want 2", n)
	}

	if _, ok := s.Get(ParseKey("app.db.pass")); ok {
		t.Error("app.db.pass should be gone")
	}
	if _, ok := s.Get(ParseKey("app.cache.url")); !ok {
		t.Error("sibling app.cache.url should survive")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.properties")

	s, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	entries := []Entry{
		{Key: ParseKey(VersionKey), Value: FormatVersion},
		{Key: ParseKey(HashKey), Value: "salt$hash"},
		{Key: ParseKey("app.db.pass"), Value: "Y2lwaGVydGV4dA==", Encrypted: true},
		{Key: ParseKey("app.db.host"), Value: "localhost"},
		{Key: ParseKey("zeta"), Value: "with = equals = signs"},
	}
	for _, e := range entries {
		if err := s.Put(e); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	reopened, err := Open(path, true)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for _, want := range entries {
		got, ok := reopened.Get(want.Key)
		if !ok {
			t.Fatalf("entry %s missing after reopen", want.Key)
		}
		if got.Value != want.Value || got.Encrypted != want.Encrypted {
			t.Errorf("entry %s: got %+v, want %+v", want.Key, got, want)
		}
	}

	keys := reopened.Keys()
	if len(keys) != 3 {
		t.Errorf("reserved entries leaked: %v", keys)
	}
}

func TestFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.properties")

	s, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, e := range []Entry{
		{Key: ParseKey("beta"), Value: "2"},
		{Key: ParseKey("Alpha"), Value: "1"},
		{Key: ParseKey(VersionKey), Value: FormatVersion},
		{Key: ParseKey("sec"), Value: "blob", Encrypted: true},
	} {
		if err := s.Put(e); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	want := []string{
		headerStartLine,
		VersionKey + "=" + FormatVersion,
		headerEndLine,
		"Alpha=1",
		"beta=2",
		"sec={ENC}blob{ENC}",
	}
	if len(lines) != len(want) {
		t.Fatalf("line count: got %d (%q), want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCreateExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.properties")

	s, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Put(Entry{Key: ParseKey(VersionKey), Value: FormatVersion}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, err := Create(path); err != ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreatePreStaged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.properties")
	staged := "app.db.pass={ENC}hunter2{ENC}\napp.db.host=localhost\n"
	if err := os.WriteFile(path, []byte(staged), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := Create(path)
	if err != nil {
		t.Fatalf("Create on marker-less file failed: %v", err)
	}

	e, ok := s.Get(ParseKey("app.db.pass"))
	if !ok || !e.Encrypted || e.Value != "hunter2" {
		t.Errorf("pre-staged entry: got %+v", e)
	}
	e, ok = s.Get(ParseKey("app.db.host"))
	if !ok || e.Encrypted || e.Value != "localhost" {
		t.Errorf("plain entry: got %+v", e)
	}
}

func TestOpenNotFound(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.properties"), false); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenVersionCheck(t *testing.T) {
	dir := t.TempDir()

	// Missing version entry
	noVersion := filepath.Join(dir, "nover.properties")
	s, err := Create(noVersion)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Put(Entry{Key: ParseKey("a"), Value: "1"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := Open(noVersion, true); err != ErrUnsupportedVersion {
		t.Errorf("missing version: expected ErrUnsupportedVersion, got %v", err)
	}
	if _, err := Open(noVersion, false); err != nil {
		t.Errorf("check disabled: unexpected error %v", err)
	}

	// Wrong version entry
	wrongVersion := filepath.Join(dir, "wrongver.properties")
	s, err = Create(wrongVersion)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Put(Entry{Key: ParseKey(VersionKey), Value: "999"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := Open(wrongVersion, true); err != ErrUnsupportedVersion {
		t.Errorf("wrong version: expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestDecodePermissive(t *testing.T) {
	text := strings.Join([]string{
		headerStartLine,
		"garbage line without equals",
		headerEndLine,
		"",
		"valid=ok",
		"another garbage line",
	}, "\n")

	entries := decode(text)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Key.String() != "valid" || entries[0].Value != "ok" {
		t.Errorf("entry: got %+v", entries[0])
	}
}

func TestValueWithEquals(t *testing.T) {
	entries := decode("key=a=b=c")
	if len(entries) != 1 || entries[0].Value != "a=b=c" {
		t.Errorf("only the first = should split: %+v", entries)
	}
}

func TestForEach(t *testing.T) {
	s := NewMemory()
	for _, k := range []string{"a.one", "a.two", VersionKey} {
		if err := s.Put(Entry{Key: ParseKey(k), Value: "v"}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	var seen []string
	err := s.ForEach(func(e Entry) error {
		seen = append(seen, e.Key.String())
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("ForEach should skip reserved entries, saw %v", seen)
	}
}
