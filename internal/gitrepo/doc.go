// Package gitrepo runs the git steps of the fleet operations and parses remote URLs.
//
// RepositoryManager drives clone, status, branch, stage, commit, push and remote
// lookups through an execshell-compatible executor and reports failures as
// OperationError values carrying git's own stderr.
package gitrepo
