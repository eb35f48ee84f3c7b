package vault

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/propvault/propvault/internal/crypto"
)

// PasswordEnvVar supplies the master password non-interactively.
const PasswordEnvVar = "PROPVAULT_PASSWORD"

// ReadPassword reads a password from the terminal without echoing.
func ReadPassword(prompt string) (*crypto.SecretBuffer, error) {
	fmt.Print(prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return crypto.NewSecretBuffer(password), nil
}

// ReadPasswordConfirm reads a password twice and ensures both match.
func ReadPasswordConfirm() (*crypto.SecretBuffer, error) {
	first, err := ReadPassword("Enter master password: ")
	if err != nil {
		return nil, err
	}

	second, err := ReadPassword("Confirm master password: ")
	if err != nil {
		first.Wipe()
		return nil, err
	}
	defer second.Wipe()

	if !first.Equal(second) {
		first.Wipe()
		return nil, fmt.Errorf("passwords do not match")
	}
	return first, nil
}

// PasswordFromEnv reads the password from PROPVAULT_PASSWORD. Returns
// nil when unset or empty.
func PasswordFromEnv() *crypto.SecretBuffer {
	password := os.Getenv(PasswordEnvVar)
	if password == "" {
		return nil
	}
	return crypto.NewSecretBufferFromString(password)
}
