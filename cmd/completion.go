package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_propvault() {
    local cur prev words cword
    _init_completion || return

    local commands="init set get rm ls tree passwd keyring backup diff status help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        set)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-f -plain -gen" -- "$cur"))
            fi
            ;;
        get|rm)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-f -r" -- "$cur"))
            else
                local keys
                keys=$(propvault ls 2>/dev/null | awk '{print $1}')
                COMPREPLY=($(compgen -W "$keys" -- "$cur"))
            fi
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save rm status" -- "$cur"))
            ;;
        backup)
            COMPREPLY=($(compgen -W "create list restore prune" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _propvault propvault
`

const zshCompletion = `#compdef propvault

_propvault() {
    local -a commands
    commands=(
        'init:Create or open a store with the convenience flow'
        'set:Store a value under a key'
        'get:Print the value stored under a key'
        'rm:Remove entries'
        'ls:List entries'
        'tree:Show entries as a hierarchy'
        'passwd:Set or change the master password'
        'keyring:Manage the OS-held master password'
        'backup:Manage store snapshots'
        'diff:Compare the store against a snapshot'
        'status:Show store status'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'propvault commands' commands
            ;;
        args)
            case "${words[2]}" in
                keyring)
                    _values 'subcommand' save rm status
                    ;;
                backup)
                    _values 'subcommand' create list restore prune
                    ;;
                help)
                    _describe -t commands 'propvault commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_propvault "$@"
`

const fishCompletion = `# propvault fish completions

set -l commands init set get rm ls tree passwd keyring backup diff status help completion

complete -c propvault -f

complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a init -d 'Create or open a store'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a set -d 'Store a value'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a get -d 'Print a value'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove entries'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List entries'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a tree -d 'Show entry hierarchy'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Set or change master password'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage OS-held password'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a backup -d 'Manage snapshots'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare against snapshot'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show store status'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c propvault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# set flags
complete -c propvault -n "__fish_seen_subcommand_from set" -o plain -d 'Store without encryption'
complete -c propvault -n "__fish_seen_subcommand_from set" -o gen -d 'Generate a strong value'

# rm flags
complete -c propvault -n "__fish_seen_subcommand_from rm" -s r -d 'Remove the whole subtree'

# keyring subcommands
complete -c propvault -n "__fish_seen_subcommand_from keyring" -a "save rm status"

# backup subcommands
complete -c propvault -n "__fish_seen_subcommand_from backup" -a "create list restore prune"

# help completions
complete -c propvault -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c propvault -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
