package backup

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Unified renders a unified diff between two versions of the store file,
// or the empty string when they are identical. Encrypted values diff as
// ciphertext, so the output never exposes protected plaintext.
func Unified(label string, old, current []byte) string {
	if bytes.Equal(old, current) {
		return ""
	}

	dmp := diffmatchpatch.New()

	oldStr, curStr := string(old), string(current)
	a, b, lineArray := dmp.DiffLinesToChars(oldStr, curStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	patches := dmp.PatchMake(oldStr, diffs)
	if len(patches) == 0 {
		return ""
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- a/%s\n", label))
	result.WriteString(fmt.Sprintf("+++ b/%s\n", label))
	result.WriteString(dmp.PatchToText(patches))
	return result.String()
}

// DiffAgainst compares the current store file against a snapshot.
func (a *Archive) DiffAgainst(id string) (string, error) {
	old, err := a.Get(id)
	if err != nil {
		return "", err
	}
	current, err := os.ReadFile(a.storePath)
	if err != nil {
		return "", fmt.Errorf("failed to read store file: %w", err)
	}
	return Unified(a.storePath, old, current), nil
}
