package cmd

import (
	"fmt"
	"os"

	"github.com/propvault/propvault/internal/crypto"
	"github.com/propvault/propvault/internal/vault"
)

// Passwd sets or changes the master password. A store that was never
// secured is bootstrapped without asking for a current password.
func Passwd(path string) {
	v, err := vault.Open(path, false, vaultOpts()...)
	if err != nil {
		HandleError(err)
	}
	defer v.Destroy()

	secured := v.Secured()

	var current *crypto.SecretBuffer
	if secured {
		current, err = vault.ReadPassword("Enter current master password: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		defer current.Wipe()
	}

	next, err := GetPasswordForCreate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer next.Wipe()

	if err := v.ChangeMasterPassword(current, next); err != nil {
		HandleError(err)
	}

	if secured {
		fmt.Println("Master password changed")
		fmt.Println("Note: existing encrypted values still need the previous password to decrypt")
	} else {
		fmt.Println("Master password set, store is now secured")
	}
}
