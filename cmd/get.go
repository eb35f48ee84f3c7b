package cmd

import (
	"errors"
	"fmt"

	"github.com/propvault/propvault/internal/vault"
)

// Get prints the value stored under key. Plaintext entries need no
// session, so a failed unlock still serves them.
func Get(path, key string) {
	v, err := vault.Open(path, true, vaultOpts()...)
	if err != nil {
		if !errors.Is(err, vault.ErrMasterKeyNotSet) {
			HandleError(err)
		}
		// No session source: fall back to a listing handle first, a
		// plaintext entry may not need one.
		v, err = vault.Open(path, false, vaultOpts()...)
		if err != nil {
			HandleError(err)
		}
	}
	defer func() { v.Destroy() }()

	value, err := v.Get(key)
	if errors.Is(err, vault.ErrValueUnavailable) && !v.Authenticated() {
		// Encrypted entry without a session: ask for the password.
		v.Destroy()
		v = openSecured(path)
		value, err = v.Get(key)
	}
	if err != nil {
		HandleError(err)
	}
	defer value.Wipe()

	fmt.Println(value.String())
}
