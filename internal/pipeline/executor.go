package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/operations"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	processStarterNotConfiguredMessageConstant = "pipeline executor process starter not configured"
	skippedRepositoryMessageConstant           = "Skipping repository"
	startFailedMessageConstant                 = "Unable to start command"
	waitFailedMessageConstant                  = "Unable to collect command"
	standardErrorMessageConstant               = "Command reported errors"
	standardOutputMessageConstant              = "Command output"
	logFieldOperationConstant                  = "operation"
	logFieldRepositoryConstant                 = "repository"
	logFieldStandardOutputConstant             = "standard_output"
	logFieldStandardErrorConstant              = "standard_error"
	logFieldExitCodeConstant                   = "exit_code"
	failedProcessExitCodeConstant              = -1
)

// ErrProcessStarterNotConfigured indicates the executor was constructed without a process starter.
var ErrProcessStarterNotConfigured = errors.New(processStarterNotConfiguredMessageConstant)

// ProcessStarter launches a command without waiting for it to finish.
type ProcessStarter interface {
	Start(executionContext context.Context, command execshell.ShellCommand) (*execshell.PendingExecution, error)
}

// ExecutorOptions tunes batch execution.
type ExecutorOptions struct {
	// OperationTimeout bounds each operation batch; zero waits indefinitely.
	OperationTimeout time.Duration
}

// Executor runs one operation across repositories: every eligible process is
// started before any is collected, and results are applied serially in
// repository order.
type Executor struct {
	logger  *zap.Logger
	starter ProcessStarter
	options ExecutorOptions
}

// NewExecutor constructs an Executor.
func NewExecutor(logger *zap.Logger, starter ProcessStarter, options ExecutorOptions) (*Executor, error) {
	if starter == nil {
		return nil, ErrProcessStarterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{logger: logger, starter: starter, options: options}, nil
}

type launchedCommand struct {
	repositoryState *state.RepositoryState
	pending         *execshell.PendingExecution
	startError      error
}

// Run executes the operation for every relevant repository state.
func (executor *Executor) Run(executionContext context.Context, operation operations.Operation, repositoryStates []*state.RepositoryState) {
	batchContext := executionContext
	if executor.options.OperationTimeout > 0 {
		var cancel context.CancelFunc
		batchContext, cancel = context.WithTimeout(executionContext, executor.options.OperationTimeout)
		defer cancel()
	}

	launched := make([]launchedCommand, 0, len(repositoryStates))
	for _, repositoryState := range repositoryStates {
		if !operation.IsRelevant(repositoryState) {
			executor.logger.Debug(
				skippedRepositoryMessageConstant,
				zap.String(logFieldOperationConstant, operation.Name()),
				zap.String(logFieldRepositoryConstant, repositoryState.Name()),
			)
			continue
		}
		pending, startError := executor.starter.Start(batchContext, operation.BuildCommand(repositoryState))
		launched = append(launched, launchedCommand{repositoryState: repositoryState, pending: pending, startError: startError})
	}

	for _, launchedEntry := range launched {
		result := executor.collect(operation, launchedEntry)
		executor.logResult(operation, launchedEntry.repositoryState, result)
		operation.ApplyResult(launchedEntry.repositoryState, result)
		for _, stage := range operation.Provides() {
			launchedEntry.repositoryState.MarkStageCompleted(stage)
		}
	}
}

func (executor *Executor) collect(operation operations.Operation, launchedEntry launchedCommand) execshell.ExecutionResult {
	if launchedEntry.startError != nil {
		executor.logger.Warn(
			startFailedMessageConstant,
			zap.String(logFieldOperationConstant, operation.Name()),
			zap.String(logFieldRepositoryConstant, launchedEntry.repositoryState.Name()),
			zap.Error(launchedEntry.startError),
		)
		return failedExecutionResult(launchedEntry.startError)
	}

	result, waitError := launchedEntry.pending.Wait()
	if waitError != nil {
		executor.logger.Warn(
			waitFailedMessageConstant,
			zap.String(logFieldOperationConstant, operation.Name()),
			zap.String(logFieldRepositoryConstant, launchedEntry.repositoryState.Name()),
			zap.Error(waitError),
		)
		return failedExecutionResult(waitError)
	}
	return result
}

func (executor *Executor) logResult(operation operations.Operation, repositoryState *state.RepositoryState, result execshell.ExecutionResult) {
	if trimmedError := strings.TrimSpace(result.StandardError); len(trimmedError) > 0 {
		executor.logger.Warn(
			standardErrorMessageConstant,
			zap.String(logFieldOperationConstant, operation.Name()),
			zap.String(logFieldRepositoryConstant, repositoryState.Name()),
			zap.Int(logFieldExitCodeConstant, result.ExitCode),
			zap.String(logFieldStandardErrorConstant, trimmedError),
		)
	}
	if trimmedOutput := strings.TrimSpace(result.StandardOutput); len(trimmedOutput) > 0 {
		executor.logger.Debug(
			standardOutputMessageConstant,
			zap.String(logFieldOperationConstant, operation.Name()),
			zap.String(logFieldRepositoryConstant, repositoryState.Name()),
			zap.String(logFieldStandardOutputConstant, trimmedOutput),
		)
	}
}

func failedExecutionResult(failure error) execshell.ExecutionResult {
	return execshell.ExecutionResult{StandardError: failure.Error(), ExitCode: failedProcessExitCodeConstant}
}
