package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/propvault/propvault/cmd"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "set":
		runSet(os.Args[2:])
	case "get":
		runGet(os.Args[2:])
	case "rm":
		runRm(os.Args[2:])
	case "ls":
		runLs(os.Args[2:], false)
	case "tree":
		runLs(os.Args[2:], true)
	case "passwd":
		runPasswd(os.Args[2:])
	case "keyring":
		runKeyring(os.Args[2:])
	case "backup":
		runBackup(os.Args[2:])
	case "diff":
		runDiff(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "completion":
		runCompletion(os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// storeFlag registers the shared -f flag on a command's flag set.
func storeFlag(fs *flag.FlagSet) *string {
	return fs.String("f", cmd.DefaultStoreFile, "Store file path")
}

func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	file := storeFlag(fs)
	parse(fs, args)

	path := *file
	if len(fs.Args()) > 0 {
		path = fs.Args()[0]
	}
	cmd.Init(path)
}

func runSet(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	file := storeFlag(fs)
	plain := fs.Bool("plain", false, "Store the value without encryption")
	gen := fs.Bool("gen", false, "Generate a strong random value")
	parse(fs, args)

	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: propvault set [-f store] [-plain] [-gen] <key> [value]")
		os.Exit(1)
	}
	value := ""
	if len(rest) > 1 {
		value = rest[1]
	}
	cmd.Set(*file, rest[0], value, *plain, *gen)
}

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	file := storeFlag(fs)
	parse(fs, args)

	if len(fs.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: propvault get [-f store] <key>")
		os.Exit(1)
	}
	cmd.Get(*file, fs.Args()[0])
}

func runRm(args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	file := storeFlag(fs)
	recursive := fs.Bool("r", false, "Remove the whole subtree below each key")
	parse(fs, args)

	cmd.Remove(*file, fs.Args(), *recursive)
}

func runLs(args []string, tree bool) {
	name := "ls"
	if tree {
		name = "tree"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	file := storeFlag(fs)
	parse(fs, args)

	prefix := ""
	if len(fs.Args()) > 0 {
		prefix = fs.Args()[0]
	}
	cmd.List(*file, prefix, tree)
}

func runPasswd(args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	file := storeFlag(fs)
	parse(fs, args)

	cmd.Passwd(*file)
}

func runKeyring(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: propvault keyring <save|rm|status> [-f store]")
		os.Exit(1)
	}
	fs := flag.NewFlagSet("keyring", flag.ExitOnError)
	file := storeFlag(fs)
	parse(fs, args[1:])

	switch args[0] {
	case "save":
		cmd.KeyringSave(*file)
	case "rm", "delete":
		cmd.KeyringDelete(*file)
	case "status":
		cmd.KeyringStatus(*file)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runBackup(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: propvault backup <create|list|restore|prune> [-f store]")
		os.Exit(1)
	}
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	file := storeFlag(fs)
	keep := fs.Int("keep", 5, "Snapshots to keep when pruning")
	parse(fs, args[1:])

	switch args[0] {
	case "create":
		cmd.BackupCreate(*file)
	case "list":
		cmd.BackupList(*file)
	case "restore":
		id := ""
		if len(fs.Args()) > 0 {
			id = fs.Args()[0]
		}
		cmd.BackupRestore(*file, id)
	case "prune":
		cmd.BackupPrune(*file, *keep)
	default:
		fmt.Fprintf(os.Stderr, "Unknown backup subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runDiff(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	file := storeFlag(fs)
	parse(fs, args)

	id := ""
	if len(fs.Args()) > 0 {
		id = fs.Args()[0]
	}
	cmd.Diff(*file, id)
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	file := storeFlag(fs)
	parse(fs, args)

	cmd.Status(*file)
}

func runCompletion(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: propvault completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("propvault - Master-password protected key/value secret store")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  propvault <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create a store, or open an existing one")
	fmt.Println("  set         Store a value under a dot-separated key")
	fmt.Println("  get         Print the value stored under a key")
	fmt.Println("  rm          Remove entries")
	fmt.Println("  ls          List entries, optionally below a prefix")
	fmt.Println("  tree        Show entries as a hierarchy")
	fmt.Println("  passwd      Set or change the master password")
	fmt.Println("  keyring     Manage the OS-held master password")
	fmt.Println("  backup      Snapshot, list, restore or prune backups")
	fmt.Println("  diff        Compare the store against a snapshot")
	fmt.Println("  status      Show store status")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  propvault init                        # Create secrets.properties")
	fmt.Println("  propvault set app.db.pass hunter2     # Store encrypted")
	fmt.Println("  propvault get app.db.pass             # Print the value")
	fmt.Println("  propvault ls app.db                   # List the group")
	fmt.Println()
	fmt.Println("Use 'propvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("propvault init [-f store] [path]")
		fmt.Println()
		fmt.Println("Creates a store file. When the file does not exist yet, a strong")
		fmt.Println("master password is generated and written to a plaintext companion")
		fmt.Println("file next to the store; read it, keep it safe, and delete the file.")
		fmt.Println("An existing store is opened via automatic unlock or the recovery")
		fmt.Println("sources. A path without an extension gets .properties appended.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  propvault init                   # secrets.properties in the cwd")
		fmt.Println("  propvault init conf/secrets      # conf/secrets.properties")
	case "set":
		fmt.Println("propvault set [-f store] [-plain] [-gen] <key> [value]")
		fmt.Println()
		fmt.Println("Stores a value under a dot-separated key. Values are encrypted by")
		fmt.Println("default; -plain stores verbatim. Without a value argument the value")
		fmt.Println("is prompted for without echo. -gen generates a strong random value")
		fmt.Println("and prints it once.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -f       Store file path (default secrets.properties)")
		fmt.Println("  -plain   Store the value without encryption")
		fmt.Println("  -gen     Generate a strong random value")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  propvault set app.db.pass hunter2")
		fmt.Println("  propvault set app.db.host localhost -plain")
		fmt.Println("  propvault set app.api.key -gen")
	case "get":
		fmt.Println("propvault get [-f store] <key>")
		fmt.Println()
		fmt.Println("Prints the value stored under the key. Plaintext entries need no")
		fmt.Println("password; encrypted entries are decrypted via automatic unlock, the")
		fmt.Println("recovery sources, or a password prompt.")
	case "rm":
		fmt.Println("propvault rm [-f store] [-r] <key> [key...]")
		fmt.Println()
		fmt.Println("Removes entries. With -r each key also removes every entry below it.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  propvault rm app.db.pass")
		fmt.Println("  propvault rm -r app.db")
	case "ls":
		fmt.Println("propvault ls [-f store] [prefix]")
		fmt.Println()
		fmt.Println("Lists entries, optionally restricted to a prefix. No password")
		fmt.Println("required; encrypted values are marked, not decrypted.")
	case "tree":
		fmt.Println("propvault tree [-f store] [prefix]")
		fmt.Println()
		fmt.Println("Shows the key hierarchy as an indented tree.")
	case "passwd":
		fmt.Println("propvault passwd [-f store]")
		fmt.Println()
		fmt.Println("Sets or changes the master password. A store without one is")
		fmt.Println("secured without asking for a current password. Existing encrypted")
		fmt.Println("values are not re-encrypted; they still need the password that")
		fmt.Println("protected them.")
	case "keyring":
		fmt.Println("propvault keyring <save|rm|status> [-f store]")
		fmt.Println()
		fmt.Println("Manages the master password held by the OS keyring for automatic")
		fmt.Println("unlock. 'save' verifies the password and stores it; 'rm' disables")
		fmt.Println("automatic unlock; 'status' reports the current state.")
	case "backup":
		fmt.Println("propvault backup <create|list|restore|prune> [-f store] [-keep n]")
		fmt.Println()
		fmt.Println("Manages snapshots of the store file, kept in a <store>.backups")
		fmt.Println("archive next to it. 'restore' takes a snapshot ID, defaulting to")
		fmt.Println("the latest. 'prune' keeps the -keep newest snapshots.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "diff":
		fmt.Println("propvault diff [-f store] [snapshot-id]")
		fmt.Println()
		fmt.Println("Compares the store file against a snapshot, the latest one by")
		fmt.Println("default. Encrypted values diff as ciphertext.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "status":
		fmt.Println("propvault status [-f store]")
		fmt.Println()
		fmt.Println("Shows store status: entry counts, whether the store is secured,")
		fmt.Println("automatic unlock state, backups, and git exposure of the store and")
		fmt.Println("companion password file.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "completion":
		fmt.Println("propvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(propvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(propvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  propvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
