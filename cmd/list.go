package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/propvault/propvault/internal/vault"
)

// List shows the entries below prefix, flat or as a tree. Listing never
// needs a session key; encrypted values are shown as such, not decrypted.
func List(path, prefix string, tree bool) {
	v, err := vault.Open(path, false, vaultOpts()...)
	if err != nil {
		HandleError(err)
	}
	defer v.Destroy()

	entries := v.EntriesUnder(prefix)
	if len(entries) == 0 {
		fmt.Println("No entries")
		return
	}

	if tree {
		printTree(v, prefix, "")
		return
	}

	for _, e := range entries {
		if e.Encrypted {
			fmt.Printf("  %s (encrypted)\n", e.Key)
		} else {
			fmt.Printf("  %s = %s\n", e.Key, e.Value)
		}
	}
}

// printTree renders the hierarchy under prefix depth first: entries at
// this level as leaves, then each child group as a branch.
func printTree(v *vault.Vault, prefix, indent string) {
	var groups []string
	seen := make(map[string]bool)

	for _, e := range v.EntriesUnder(prefix) {
		rest := keyBelow(prefix, e.Key.String())
		if rest == "" {
			continue
		}
		if i := strings.IndexByte(rest, '.'); i >= 0 {
			child := strings.ToLower(rest[:i])
			if !seen[child] {
				seen[child] = true
				groups = append(groups, rest[:i])
			}
			continue
		}
		if e.Encrypted {
			fmt.Printf("%s%s (encrypted)\n", indent, rest)
		} else {
			fmt.Printf("%s%s = %s\n", indent, rest, e.Value)
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return strings.ToLower(groups[i]) < strings.ToLower(groups[j])
	})
	for _, g := range groups {
		fmt.Printf("%s%s/\n", indent, g)
		child := g
		if prefix != "" {
			child = prefix + "." + g
		}
		printTree(v, child, indent+"  ")
	}
}

// keyBelow returns the part of key below prefix, or "" when key is not
// under it. Prefix matching is case-insensitive like key equality.
func keyBelow(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if len(key) <= len(prefix)+1 {
		return ""
	}
	if !strings.EqualFold(key[:len(prefix)], prefix) || key[len(prefix)] != '.' {
		return ""
	}
	return key[len(prefix)+1:]
}
