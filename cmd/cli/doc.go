// Package cli constructs the repofleet command-line interface. It wires the
// Cobra command hierarchy to the settings loader, the structured logger and
// the console sink shared by every subcommand.
package cli
