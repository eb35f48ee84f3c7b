package cmd

import (
	"fmt"
	"os"

	"github.com/propvault/propvault/internal/backup"
)

func openArchive(path string) *backup.Archive {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "Error: store file not found")
		os.Exit(1)
	}
	a, err := backup.Open(path)
	if err != nil {
		HandleError(err)
	}
	return a
}

// BackupCreate snapshots the store file into the archive next to it.
func BackupCreate(path string) {
	a := openArchive(path)
	defer a.Close()

	id, err := a.Snapshot()
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("Snapshot %s created\n", id)
}

// BackupList prints the stored snapshots, oldest first.
func BackupList(path string) {
	a := openArchive(path)
	defer a.Close()

	infos, err := a.List()
	if err != nil {
		HandleError(err)
	}
	if len(infos) == 0 {
		fmt.Println("No snapshots")
		return
	}
	for _, info := range infos {
		fmt.Printf("  %s (%d bytes)\n", info.ID, info.Size)
	}
}

// BackupRestore rewrites the store file from a snapshot; the latest one
// when no ID is given.
func BackupRestore(path, id string) {
	a := openArchive(path)
	defer a.Close()

	if id == "" {
		latest, err := a.Latest()
		if err != nil {
			HandleError(err)
		}
		if latest == "" {
			fmt.Fprintln(os.Stderr, "Error: no snapshots to restore")
			os.Exit(1)
		}
		id = latest
	}

	if err := a.Restore(id); err != nil {
		HandleError(err)
	}
	fmt.Printf("Restored snapshot %s\n", id)
}

// BackupPrune keeps only the newest n snapshots.
func BackupPrune(path string, keep int) {
	a := openArchive(path)
	defer a.Close()

	removed, err := a.Prune(keep)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("Removed %d snapshots, kept %d most recent\n", removed, keep)
}
