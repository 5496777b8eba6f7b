package ui

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repostates/internal/execshell"
)

const (
	logFieldRepositoryConstant = "repository"
	logFieldExitCodeConstant   = "exit_code"
)

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger
// configured for human-readable output. Non-zero exits are reported at info
// level because the pipeline executor already surfaces their standard error as warnings.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Debug(eventLogger.formatter.BuildStartedMessage(command), repositoryField(command))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command), repositoryField(command))
		return
	}
	eventLogger.logger.Info(
		eventLogger.formatter.BuildFailureMessage(command, result),
		repositoryField(command),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure), repositoryField(command))
}

func repositoryField(command execshell.ShellCommand) zap.Field {
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		return zap.Skip()
	}
	return zap.String(logFieldRepositoryConstant, filepath.Base(workingDirectory))
}
