package cmd

import (
	"fmt"

	"github.com/propvault/propvault/internal/vault"
)

// Remove deletes entries. With recursive set, each key argument removes
// the whole subtree below it as well.
func Remove(path string, keys []string, recursive bool) {
	if len(keys) == 0 {
		fmt.Println("Nothing to remove")
		return
	}

	// Deletion needs no session key.
	v, err := vault.Open(path, false, vaultOpts()...)
	if err != nil {
		HandleError(err)
	}
	defer v.Destroy()

	for _, key := range keys {
		if recursive {
			n, err := v.DeletePrefix(key)
			if err != nil {
				HandleError(err)
			}
			fmt.Printf("Removed %d entries under %s\n", n, key)
			continue
		}

		removed, err := v.Delete(key)
		if err != nil {
			HandleError(err)
		}
		if !removed {
			HandleError(fmt.Errorf("%w: %s", vault.ErrEntryNotFound, key))
		}
		fmt.Printf("Removed %s\n", key)
	}
}
