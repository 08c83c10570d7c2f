// Package runner executes one shell command inside one repository.
//
// Runner.Run spawns the command through the system shell in the repository
// directory, pumps stdout and stderr concurrently into the console and an
// optional transcript, and resolves a terminal State once both streams are
// drained and the process has exited.
package runner
