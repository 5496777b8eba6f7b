package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandExecutionErrorTemplateConstant     = "%s execution failed: %v"
	logFieldCommandNameConstant               = "command_name"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant    = "0"
)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandExecutionError reports a process that could not be started or collected.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Name, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor starts commands through a CommandRunner while logging their lifecycle.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor from the provided collaborators.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observer:  noopCommandEventObserver{},
		formatter: CommandMessageFormatter{},
	}, nil
}

// WithObserver returns a copy of the executor that notifies the observer about command events.
func (executor *ShellExecutor) WithObserver(observer CommandEventObserver) *ShellExecutor {
	duplicated := *executor
	if observer == nil {
		observer = noopCommandEventObserver{}
	}
	duplicated.observer = observer
	return &duplicated
}

// PendingExecution is a started command whose result has not been collected yet.
type PendingExecution struct {
	executor *ShellExecutor
	command  ShellCommand
	running  RunningCommand
}

// Command returns the command that was started.
func (pending *PendingExecution) Command() ShellCommand {
	return pending.command
}

// Start launches the command and returns immediately.
func (executor *ShellExecutor) Start(executionContext context.Context, command ShellCommand) (*PendingExecution, error) {
	preparedCommand := prepareCommand(command)

	executor.logger.Debug(
		executor.formatter.BuildStartedMessage(preparedCommand),
		zap.String(logFieldCommandNameConstant, string(preparedCommand.Name)),
		zap.Strings(logFieldArgumentsConstant, preparedCommand.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, preparedCommand.Details.WorkingDirectory),
	)
	executor.observer.CommandStarted(preparedCommand)

	running, startError := executor.runner.Start(executionContext, preparedCommand)
	if startError != nil {
		executor.reportExecutionFailure(preparedCommand, startError)
		return nil, CommandExecutionError{Command: preparedCommand, Cause: startError}
	}

	return &PendingExecution{executor: executor, command: preparedCommand, running: running}, nil
}

// Wait blocks until the started command exits. A non-zero exit code is returned as a
// result, not as an error; errors are reserved for processes that could not be collected.
func (pending *PendingExecution) Wait() (ExecutionResult, error) {
	executor := pending.executor
	result, waitError := pending.running.Wait()
	if waitError != nil {
		executor.reportExecutionFailure(pending.command, waitError)
		return ExecutionResult{}, CommandExecutionError{Command: pending.command, Cause: waitError}
	}

	if result.ExitCode == 0 {
		executor.logger.Debug(
			executor.formatter.BuildSuccessMessage(pending.command),
			zap.String(logFieldWorkingDirectoryConstant, pending.command.Details.WorkingDirectory),
		)
	} else {
		executor.logger.Debug(
			executor.formatter.BuildFailureMessage(pending.command, result),
			zap.String(logFieldWorkingDirectoryConstant, pending.command.Details.WorkingDirectory),
			zap.Int(logFieldExitCodeConstant, result.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
		)
	}
	executor.observer.CommandCompleted(pending.command, result)

	return result, nil
}

func (executor *ShellExecutor) reportExecutionFailure(command ShellCommand, failure error) {
	executor.logger.Warn(
		executor.formatter.BuildExecutionFailureMessage(command, failure),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		zap.Error(failure),
	)
	executor.observer.CommandExecutionFailed(command, failure)
}

func prepareCommand(command ShellCommand) ShellCommand {
	if command.Name != CommandGit {
		return command
	}
	if _, configured := command.Details.EnvironmentVariables[gitTerminalPromptEnvironmentNameConstant]; configured {
		return command
	}
	environment := make(map[string]string, len(command.Details.EnvironmentVariables)+1)
	for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
		environment[environmentKey] = environmentValue
	}
	environment[gitTerminalPromptEnvironmentNameConstant] = gitTerminalPromptDisabledValueConstant
	command.Details.EnvironmentVariables = environment
	return command
}
