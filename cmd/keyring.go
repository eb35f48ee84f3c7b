package cmd

import (
	"fmt"
	"os"

	"github.com/propvault/propvault/internal/keyring"
	"github.com/propvault/propvault/internal/vault"
)

// KeyringSave wraps the master password into the OS keyring so future
// opens need no password.
func KeyringSave(path string) {
	ks := keyring.NewSystem()
	if !ks.Available() {
		HandleError(keyring.ErrPlatformUnsupported)
	}

	password := GetPasswordOrExit("Enter master password: ")
	defer password.Wipe()

	// OpenWithPassword wraps into the keystore as a side effect of a
	// verified session.
	v, err := vault.OpenWithPassword(path, password, vaultOpts()...)
	if err != nil {
		HandleError(err)
	}
	defer v.Destroy()

	if !v.OSKeyStored() {
		fmt.Fprintln(os.Stderr, "Error: failed to store the password in the OS keyring")
		os.Exit(1)
	}
	fmt.Println("Master password saved to the OS keyring")
}

// KeyringDelete disables automatic unlock for the store.
func KeyringDelete(path string) {
	v, err := vault.Open(path, false, vaultOpts()...)
	if err != nil {
		HandleError(err)
	}
	defer v.Destroy()

	if !v.OSKeyStored() {
		fmt.Println("No password stored in the OS keyring")
		return
	}
	if err := v.ForgetOSKey(); err != nil {
		HandleError(err)
	}
	fmt.Println("Master password removed from the OS keyring")
}

// KeyringStatus reports whether automatic unlock is set up.
func KeyringStatus(path string) {
	v, err := vault.Open(path, false, vaultOpts()...)
	if err != nil {
		HandleError(err)
	}
	defer v.Destroy()

	if !v.OSKeyStored() {
		fmt.Println("Automatic unlock: not set up")
		return
	}
	if keyring.NewSystem().Available() {
		fmt.Println("Automatic unlock: enabled")
	} else {
		fmt.Println("Automatic unlock: configured, but no usable OS keyring on this platform")
	}
}
