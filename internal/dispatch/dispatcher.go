// Package dispatch fans one operation out across the selected repositories.
//
// Each repository is handled independently. A failure is printed with the
// repository prefix and counted, and it never stops, cancels or fails the
// work of any other repository. Concurrent batches start every repository at
// once with no admission limit.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/discovery"
	"github.com/temirov/repofleet/internal/pullrequest"
	"github.com/temirov/repofleet/internal/runner"
	"github.com/temirov/repofleet/internal/utils"
)

const (
	repositoryErrorTemplateConstant      = "Error: %s"
	kindErrorTemplateConstant            = "%w: %s"
	panicTemplateConstant                = "operation panicked: %v"
	logMessageBatchStartedConstant       = "batch started"
	logMessageBatchFinishedConstant      = "batch finished"
	logMessageRepositoryFinishedConstant = "repository operation finished"
	logFieldOperationConstant            = "operation"
	logFieldRepositoriesConstant         = "repositories"
	logFieldConcurrentConstant           = "concurrent"
	logFieldRepositoryConstant           = "repository"
	logFieldSucceededConstant            = "succeeded"
	logFieldFailedConstant               = "failed"
	logFieldDurationConstant             = "duration"
)

var (
	// ErrConsoleNotConfigured indicates a Dispatcher constructed without a console sink.
	ErrConsoleNotConfigured = errors.New("dispatcher console not configured")
	// ErrUnsupportedOperation indicates an operation kind outside the closed set.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrExecutorNotConfigured indicates an operation whose executor was not provided.
	ErrExecutorNotConfigured = errors.New("operation executor not configured")
)

// Cloner clones one repository.
type Cloner interface {
	Clone(executionContext context.Context, repository catalog.Repository) error
}

// CommandRunner runs a shell command in one repository.
type CommandRunner interface {
	Run(executionContext context.Context, repository catalog.Repository, command string, logDirectory string) (runner.Outcome, error)
}

// PullRequestWorkflow opens a pull request for one repository.
type PullRequestWorkflow interface {
	Run(executionContext context.Context, repository catalog.Repository, options pullrequest.Options) error
}

// Remover deletes one repository's directory.
type Remover interface {
	Remove(executionContext context.Context, repository catalog.Repository) error
}

// CatalogInitializer writes a catalog from the repositories found on disk.
type CatalogInitializer interface {
	Initialize(executionContext context.Context, options discovery.InitOptions) (int, error)
}

// Executors carries the collaborator for each operation kind. Unused kinds may be nil.
type Executors struct {
	Cloner      Cloner
	Runner      CommandRunner
	PullRequest PullRequestWorkflow
	Remover     Remover
	Initializer CatalogInitializer
}

// RepositoryOutcome records how one repository's operation ended.
type RepositoryOutcome struct {
	RepositoryName string
	Duration       time.Duration
	Err            error
}

// Succeeded reports whether the operation finished without error.
func (outcome RepositoryOutcome) Succeeded() bool {
	return outcome.Err == nil
}

// BatchResult aggregates a batch. Outcomes follow the order of the input repositories.
type BatchResult struct {
	Succeeded int
	Failed    int
	Outcomes  []RepositoryOutcome
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithLogger attaches a diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(dispatcher *Dispatcher) {
		if logger != nil {
			dispatcher.logger = logger
		}
	}
}

// WithClock replaces the time source used for durations.
func WithClock(clock utils.Clock) Option {
	return func(dispatcher *Dispatcher) {
		if clock != nil {
			dispatcher.clock = clock
		}
	}
}

// Dispatcher applies operations to repositories.
type Dispatcher struct {
	console   *console.Console
	executors Executors
	logger    *zap.Logger
	clock     utils.Clock
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(consoleSink *console.Console, executors Executors, options ...Option) (*Dispatcher, error) {
	if consoleSink == nil {
		return nil, ErrConsoleNotConfigured
	}

	dispatcher := &Dispatcher{
		console:   consoleSink,
		executors: executors,
		logger:    zap.NewNop(),
		clock:     utils.SystemClock{},
	}
	for _, option := range options {
		if option != nil {
			option(dispatcher)
		}
	}
	return dispatcher, nil
}

// Execute matches the operation kind once. Init runs a single scan and reports
// its error; every other kind is applied per repository through RunBatch.
func (dispatcher *Dispatcher) Execute(executionContext context.Context, repositories []catalog.Repository, operation Operation, concurrent bool) (BatchResult, error) {
	if operation.Kind == OperationInit {
		if dispatcher.executors.Initializer == nil {
			return BatchResult{}, fmt.Errorf(kindErrorTemplateConstant, ErrExecutorNotConfigured, operation.Kind)
		}
		written, initError := dispatcher.executors.Initializer.Initialize(executionContext, operation.Init)
		if initError != nil {
			return BatchResult{}, initError
		}
		return BatchResult{Succeeded: written}, nil
	}
	return dispatcher.RunBatch(executionContext, repositories, operation, concurrent), nil
}

// RunBatch applies operation to every repository.
//
// Sequential batches handle repositories one at a time in order. Concurrent
// batches start one goroutine per repository immediately and wait for all of
// them. Failures are printed and counted; they never stop the batch.
func (dispatcher *Dispatcher) RunBatch(executionContext context.Context, repositories []catalog.Repository, operation Operation, concurrent bool) BatchResult {
	dispatcher.logger.Debug(
		logMessageBatchStartedConstant,
		zap.String(logFieldOperationConstant, operation.String()),
		zap.Int(logFieldRepositoriesConstant, len(repositories)),
		zap.Bool(logFieldConcurrentConstant, concurrent),
	)

	outcomes := make([]RepositoryOutcome, len(repositories))
	if concurrent {
		var group errgroup.Group
		for repositoryIndex, repository := range repositories {
			group.Go(func() error {
				outcomes[repositoryIndex] = dispatcher.executeRepository(executionContext, repository, operation)
				return nil
			})
		}
		_ = group.Wait()
	} else {
		for repositoryIndex, repository := range repositories {
			outcomes[repositoryIndex] = dispatcher.executeRepository(executionContext, repository, operation)
		}
	}

	result := BatchResult{Outcomes: outcomes}
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	dispatcher.logger.Debug(
		logMessageBatchFinishedConstant,
		zap.String(logFieldOperationConstant, operation.String()),
		zap.Int(logFieldSucceededConstant, result.Succeeded),
		zap.Int(logFieldFailedConstant, result.Failed),
	)
	return result
}

func (dispatcher *Dispatcher) executeRepository(executionContext context.Context, repository catalog.Repository, operation Operation) RepositoryOutcome {
	startedAt := dispatcher.clock.Now()
	operationError := dispatcher.applyRecovering(executionContext, repository, operation)
	outcome := RepositoryOutcome{
		RepositoryName: repository.Name,
		Duration:       dispatcher.clock.Now().Sub(startedAt),
		Err:            operationError,
	}

	if operationError != nil {
		dispatcher.console.Error(repository.Name, fmt.Sprintf(repositoryErrorTemplateConstant, operationError.Error()))
	}
	dispatcher.logger.Debug(
		logMessageRepositoryFinishedConstant,
		zap.String(logFieldRepositoryConstant, repository.Name),
		zap.String(logFieldOperationConstant, operation.String()),
		zap.Duration(logFieldDurationConstant, outcome.Duration),
		zap.Error(operationError),
	)
	return outcome
}

func (dispatcher *Dispatcher) applyRecovering(executionContext context.Context, repository catalog.Repository, operation Operation) (operationError error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			operationError = fmt.Errorf(panicTemplateConstant, recovered)
		}
	}()
	return dispatcher.apply(executionContext, repository, operation)
}

func (dispatcher *Dispatcher) apply(executionContext context.Context, repository catalog.Repository, operation Operation) error {
	executors := dispatcher.executors
	switch operation.Kind {
	case OperationClone:
		if executors.Cloner == nil {
			return missingExecutor(operation.Kind)
		}
		return executors.Cloner.Clone(executionContext, repository)
	case OperationRun:
		if executors.Runner == nil {
			return missingExecutor(operation.Kind)
		}
		_, runError := executors.Runner.Run(executionContext, repository, operation.Command, operation.LogDirectory)
		return runError
	case OperationPullRequest:
		if executors.PullRequest == nil {
			return missingExecutor(operation.Kind)
		}
		return executors.PullRequest.Run(executionContext, repository, operation.PullRequest)
	case OperationRemove:
		if executors.Remover == nil {
			return missingExecutor(operation.Kind)
		}
		return executors.Remover.Remove(executionContext, repository)
	default:
		return fmt.Errorf(kindErrorTemplateConstant, ErrUnsupportedOperation, operation.Kind)
	}
}

func missingExecutor(kind OperationKind) error {
	return fmt.Errorf(kindErrorTemplateConstant, ErrExecutorNotConfigured, kind)
}
