// Package git checks whether store artifacts are exposed through git.
// The store file itself is safe to commit (values are ciphertext), but a
// committed companion password file is a leaked master password.
package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status describes git exposure of the store artifacts.
type Status struct {
	IsRepo            bool
	StoreTracked      bool
	CompanionTracked  bool
	CompanionPresent  bool
	CompanionIgnored  bool
	CompanionFileName string
}

// IsRepo checks if the directory is inside a git work tree.
func IsRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git.
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git.
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	// exit code 0 means ignored
	return cmd.Run() == nil
}

// Check inspects the exposure of the store file and, when present, the
// companion password file.
func Check(workDir, storeFile, companionFile string, companionPresent bool) *Status {
	status := &Status{CompanionFileName: companionFile, CompanionPresent: companionPresent}

	if !IsRepo(workDir) {
		return status
	}
	status.IsRepo = true

	status.StoreTracked = IsTracked(workDir, storeFile)
	if companionPresent {
		status.CompanionTracked = IsTracked(workDir, companionFile)
		status.CompanionIgnored = IsIgnored(workDir, companionFile)
	}
	return status
}

// Format renders the exposure report for display. Empty outside a repo.
func Format(status *Status) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit integration:\n")

	if status.StoreTracked {
		result.WriteString("   ok: store file is tracked by git (values are ciphertext)\n")
	} else {
		result.WriteString("   note: store file not tracked by git\n")
	}

	if status.CompanionPresent {
		if status.CompanionTracked {
			result.WriteString(fmt.Sprintf("   error: %s is tracked by git, the master password is exposed\n", status.CompanionFileName))
			result.WriteString(fmt.Sprintf("      run: git rm --cached %s\n", status.CompanionFileName))
		} else if !status.CompanionIgnored {
			result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore (add it, then delete the file)\n", status.CompanionFileName))
		} else {
			result.WriteString(fmt.Sprintf("   warning: %s still present, delete it once the password is stored safely\n", status.CompanionFileName))
		}
	}

	return result.String()
}
