// Package execshell runs external tools in a structured, observable way.
//
// ShellExecutor wraps a CommandRunner with diagnostic logging and lifecycle
// notifications, and OSCommandRunner is the os/exec backed runner used in
// production. repofleet drives every git subcommand through this package so the
// git collaborator can be replaced by a recording runner in tests.
package execshell
