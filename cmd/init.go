package cmd

import (
	"fmt"

	"github.com/propvault/propvault/internal/vault"
)

// Init creates a store at path, generating a master password when none
// exists yet, or opens an existing one via the recovery chain.
func Init(path string) {
	v, err := vault.Init(path, vaultOpts()...)
	if err != nil {
		HandleError(err)
	}
	defer v.Destroy()

	fmt.Printf("Store ready at %s\n", v.Path())
	if v.OSUnlocked() {
		fmt.Println("Master password is held by the OS keyring")
	}
}
