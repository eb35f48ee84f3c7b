package crypto

import (
	"strings"
	"testing"
)

func countClass(s, class string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(class, r) {
			n++
		}
	}
	return n
}

func TestGeneratePasswordQuotas(t *testing.T) {
	buf, err := GeneratePassword(3, 4, 5, 2)
	if err != nil {
		t.Fatalf("GeneratePassword failed: %v", err)
	}
	defer buf.Wipe()

	pw := buf.String()
	if len(pw) != 3+4+5+2 {
		t.Errorf("length: got %d, want %d", len(pw), 3+4+5+2)
	}
	if got := countClass(pw, lowerChars); got != 3 {
		t.Errorf("lower count: got %d, want 3", got)
	}
	if got := countClass(pw, upperChars); got != 4 {
		t.Errorf("upper count: got %d, want 4", got)
	}
	if got := countClass(pw, digitChars); got != 5 {
		t.Errorf("digit count: got %d, want 5", got)
	}
	if got := countClass(pw, symbolChars); got != 2 {
		t.Errorf("symbol count: got %d, want 2", got)
	}
}

func TestGenerateDefaultPassword(t *testing.T) {
	buf, err := GenerateDefaultPassword()
	if err != nil {
		t.Fatalf("GenerateDefaultPassword failed: %v", err)
	}
	defer buf.Wipe()

	want := DefaultLower + DefaultUpper + DefaultDigits + DefaultSymbols
	if buf.Len() != want {
		t.Errorf("length: got %d, want %d", buf.Len(), want)
	}
}

func TestGeneratePasswordUnique(t *testing.T) {
	b1, err := GenerateDefaultPassword()
	if err != nil {
		t.Fatalf("GenerateDefaultPassword failed: %v", err)
	}
	defer b1.Wipe()

	b2, err := GenerateDefaultPassword()
	if err != nil {
		t.Fatalf("GenerateDefaultPassword failed: %v", err)
	}
	defer b2.Wipe()

	if b1.Equal(b2) {
		t.Error("two generated passwords should differ")
	}
}
