// Package ui turns command lifecycle events into debug log lines carrying the
// repository, exit code and elapsed time of every git invocation.
package ui
