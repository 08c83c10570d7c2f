// Package commands builds the repofleet subcommands.
//
// Every builder resolves its collaborators lazily through provider functions
// so the root command can finish loading settings, the logger and the console
// before any subcommand runs.
package commands
