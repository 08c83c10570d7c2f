package dispatch

import (
	"github.com/temirov/repofleet/internal/discovery"
	"github.com/temirov/repofleet/internal/pullrequest"
)

// OperationKind names one of the closed set of fleet operations.
type OperationKind string

// Supported operation kinds.
const (
	OperationClone       OperationKind = "clone"
	OperationRun         OperationKind = "run"
	OperationPullRequest OperationKind = "pull_request"
	OperationRemove      OperationKind = "remove"
	OperationInit        OperationKind = "init"
)

// Operation describes what to do with each selected repository.
// Only the fields belonging to Kind are read.
type Operation struct {
	Kind OperationKind

	// Command and LogDirectory belong to OperationRun. An empty LogDirectory disables transcripts.
	Command      string
	LogDirectory string

	PullRequest pullrequest.Options
	Init        discovery.InitOptions
}

// CloneOperation clones every repository that is not yet on disk.
func CloneOperation() Operation {
	return Operation{Kind: OperationClone}
}

// RunOperation runs command in every repository, writing transcripts below logDirectory when it is set.
func RunOperation(command string, logDirectory string) Operation {
	return Operation{Kind: OperationRun, Command: command, LogDirectory: logDirectory}
}

// PullRequestOperation commits pending changes and opens a pull request per repository.
func PullRequestOperation(options pullrequest.Options) Operation {
	return Operation{Kind: OperationPullRequest, PullRequest: options}
}

// RemoveOperation deletes every repository's target directory.
func RemoveOperation() Operation {
	return Operation{Kind: OperationRemove}
}

// InitOperation scans the working tree and writes a catalog.
func InitOperation(options discovery.InitOptions) Operation {
	return Operation{Kind: OperationInit, Init: options}
}

// String returns the operation kind.
func (operation Operation) String() string {
	return string(operation.Kind)
}
