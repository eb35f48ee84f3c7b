package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/propvault/propvault/internal/backup"
	"github.com/propvault/propvault/internal/git"
	"github.com/propvault/propvault/internal/keyring"
	"github.com/propvault/propvault/internal/vault"
)

// Status shows the state of the store. No password required.
func Status(path string) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No store file at %s\n", path)
			fmt.Println("Run 'propvault init' to create one")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	v, err := vault.Open(path, false, vaultOpts()...)
	if err != nil {
		HandleError(err)
	}
	defer v.Destroy()

	encrypted, plain := 0, 0
	for _, e := range v.EntriesUnder("") {
		if e.Encrypted {
			encrypted++
		} else {
			plain++
		}
	}

	fmt.Printf("Store: %s\n", path)
	fmt.Printf("  entries: %d encrypted, %d plaintext\n", encrypted, plain)
	if v.Secured() {
		fmt.Println("  secured: yes")
	} else {
		fmt.Println("  secured: no (run 'propvault passwd')")
	}
	if v.OSKeyStored() {
		if keyring.NewSystem().Available() {
			fmt.Println("  automatic unlock: enabled")
		} else {
			fmt.Println("  automatic unlock: configured, keyring unavailable")
		}
	} else {
		fmt.Println("  automatic unlock: not set up")
	}

	printBackupStatus(path)

	dir := filepath.Dir(path)
	companion := filepath.Join(dir, vault.CompanionFileName)
	_, companionErr := os.Stat(companion)
	exposure := git.Check(dir, filepath.Base(path), vault.CompanionFileName, companionErr == nil)
	if report := git.Format(exposure); report != "" {
		fmt.Print(report)
	} else if companionErr == nil {
		fmt.Printf("\nwarning: %s still present, delete it once the password is stored safely\n", vault.CompanionFileName)
	}
}

func printBackupStatus(path string) {
	if _, err := os.Stat(path + backup.ArchiveSuffix); err != nil {
		fmt.Println("  backups: none")
		return
	}
	a, err := backup.Open(path)
	if err != nil {
		fmt.Println("  backups: unreadable")
		return
	}
	defer a.Close()

	infos, err := a.List()
	if err != nil || len(infos) == 0 {
		fmt.Println("  backups: none")
		return
	}
	fmt.Printf("  backups: %d (latest %s)\n", len(infos), infos[len(infos)-1].ID)
}
