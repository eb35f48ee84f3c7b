package cmd

import (
	"fmt"

	"github.com/propvault/propvault/internal/crypto"
	"github.com/propvault/propvault/internal/vault"
)

// Set stores a value under key. An empty value triggers a hidden prompt.
// With generate set, a strong random password is stored instead and
// printed once.
func Set(path, key, value string, plain, generate bool) {
	v := openSecured(path)
	defer v.Destroy()

	switch {
	case generate:
		password, err := crypto.GenerateDefaultPassword()
		if err != nil {
			HandleError(err)
		}
		defer password.Wipe()
		value = password.String()
		fmt.Printf("Generated value for %s: %s\n", key, value)
	case value == "":
		// Always prompt here; the environment variable holds the master
		// password, not entry values.
		buf, err := vault.ReadPassword(fmt.Sprintf("Enter value for %s: ", key))
		if err != nil {
			HandleError(err)
		}
		defer buf.Wipe()
		value = buf.String()
	}

	if err := v.Add(key, value, !plain); err != nil {
		HandleError(err)
	}

	if plain {
		fmt.Printf("Stored %s (plaintext)\n", key)
	} else {
		fmt.Printf("Stored %s (encrypted)\n", key)
	}
}
