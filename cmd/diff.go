package cmd

import (
	"fmt"
	"os"
)

// Diff compares the store file against a snapshot, the latest one when
// no ID is given. Values diff as stored, so encrypted entries never leak
// plaintext into the output.
func Diff(path, id string) {
	a := openArchive(path)
	defer a.Close()

	if id == "" {
		latest, err := a.Latest()
		if err != nil {
			HandleError(err)
		}
		if latest == "" {
			fmt.Fprintln(os.Stderr, "Error: no snapshots to diff against")
			os.Exit(1)
		}
		id = latest
	}

	out, err := a.DiffAgainst(id)
	if err != nil {
		HandleError(err)
	}
	if out == "" {
		fmt.Println("No changes since snapshot", id)
		return
	}
	fmt.Print(out)
}
