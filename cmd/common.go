package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/propvault/propvault/internal/audit"
	"github.com/propvault/propvault/internal/crypto"
	"github.com/propvault/propvault/internal/keyring"
	"github.com/propvault/propvault/internal/store"
	"github.com/propvault/propvault/internal/vault"
)

// DefaultStoreFile is used when no -f flag is given.
const DefaultStoreFile = "secrets.properties"

// GetPassword retrieves the master password from the environment or
// prompts the user. The caller must Wipe the returned buffer.
func GetPassword(prompt string) (*crypto.SecretBuffer, error) {
	if password := vault.PasswordFromEnv(); password != nil {
		return password, nil
	}
	return vault.ReadPassword(prompt)
}

// GetPasswordOrExit is like GetPassword but exits on error.
func GetPasswordOrExit(prompt string) *crypto.SecretBuffer {
	password, err := GetPassword(prompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return password
}

// GetPasswordForCreate retrieves a fresh master password, from the
// environment or via a confirmation prompt.
func GetPasswordForCreate() (*crypto.SecretBuffer, error) {
	if password := vault.PasswordFromEnv(); password != nil {
		return password, nil
	}
	return vault.ReadPasswordConfirm()
}

// vaultOpts directs vault diagnostics to stderr.
func vaultOpts() []vault.Option {
	return []vault.Option{vault.WithLogger(audit.NewWriter(os.Stderr))}
}

// openSecured opens the store with a usable session: automatic unlock
// first, then a password prompt when every recovery source is exhausted.
func openSecured(path string) *vault.Vault {
	v, err := vault.Open(path, true, vaultOpts()...)
	if err == nil {
		return v
	}
	if !errors.Is(err, vault.ErrMasterKeyNotSet) {
		HandleError(err)
	}

	password := GetPasswordOrExit("Enter master password: ")
	defer password.Wipe()

	v, err = vault.OpenWithPassword(path, password, vaultOpts()...)
	if err != nil {
		HandleError(err)
	}
	return v
}

// HandleError prints a friendly message for known errors and exits.
func HandleError(err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(os.Stderr, "Error: store file not found")
		fmt.Fprintln(os.Stderr, "Run 'propvault init' first, or pass the right -f path")
	case errors.Is(err, store.ErrAlreadyExists):
		fmt.Fprintln(os.Stderr, "Error: store file already exists")
		fmt.Fprintln(os.Stderr, "Use 'propvault status' to see its state")
	case errors.Is(err, store.ErrUnsupportedVersion):
		fmt.Fprintln(os.Stderr, "Error: store file was written by an unsupported version")
	case errors.Is(err, vault.ErrIncorrectPassword):
		fmt.Fprintln(os.Stderr, "Error: incorrect master password")
	case errors.Is(err, vault.ErrPasswordTooShort):
		fmt.Fprintf(os.Stderr, "Error: master password must be at least %d characters\n", vault.MinPasswordLength)
	case errors.Is(err, vault.ErrMasterKeyNotSet):
		fmt.Fprintln(os.Stderr, "Error: no master password available")
		fmt.Fprintf(os.Stderr, "Set %s, or supply the password when prompted\n", vault.PasswordEnvVar)
	case errors.Is(err, vault.ErrSecureModeNotOn):
		fmt.Fprintln(os.Stderr, "Error: store is not secured, cannot encrypt")
		fmt.Fprintln(os.Stderr, "Run 'propvault passwd' to set a master password")
	case errors.Is(err, vault.ErrForeignPrincipal):
		fmt.Fprintln(os.Stderr, "Error: the OS-stored key belongs to a different user or store")
	case errors.Is(err, vault.ErrEntryNotFound):
		fmt.Fprintln(os.Stderr, "Error: entry not found")
	case errors.Is(err, vault.ErrValueUnavailable):
		fmt.Fprintln(os.Stderr, "Error: value cannot be decrypted with the available key")
	case errors.Is(err, keyring.ErrPlatformUnsupported):
		fmt.Fprintln(os.Stderr, "Error: no usable OS keyring on this platform")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
