// Package discovery builds a catalog from the git repositories already present under a directory.
package discovery
