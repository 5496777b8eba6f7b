package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	gitFetchSubcommandNameConstant       = "fetch"
	gitStatusSubcommandNameConstant      = "status"
	gitDescribeSubcommandNameConstant    = "describe"
	gitPullSubcommandNameConstant        = "pull"
	gitCheckoutSubcommandNameConstant    = "checkout"
	gitSymbolicRefSubcommandNameConstant = "symbolic-ref"
	gitLSRemoteSubcommandNameConstant    = "ls-remote"
	gitBranchSubcommandNameConstant      = "branch"
)

// gitMessageTemplates holds start, success, failure and execution-failure templates.
// Every template receives the working directory first; failure templates also
// receive the exit code and the standard error suffix.
type gitMessageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var gitSubcommandMessageTemplates = map[string]gitMessageTemplates{
	gitFetchSubcommandNameConstant: {
		start:            "Fetching origin in %s",
		success:          "Fetched origin in %s",
		failure:          "Failed to fetch origin in %s (exit code %d%s)",
		executionFailure: "Unable to fetch origin in %s: %s",
	},
	gitStatusSubcommandNameConstant: {
		start:            "Reviewing working tree status in %s",
		success:          "Collected working tree status for %s",
		failure:          "Failed to review working tree status in %s (exit code %d%s)",
		executionFailure: "Unable to review working tree status in %s: %s",
	},
	gitDescribeSubcommandNameConstant: {
		start:            "Looking up an exact tag in %s",
		success:          "Found an exact tag in %s",
		failure:          "No exact tag in %s (exit code %d%s)",
		executionFailure: "Unable to look up tags in %s: %s",
	},
	gitPullSubcommandNameConstant: {
		start:            "Pulling upstream changes in %s",
		success:          "Pulled upstream changes in %s",
		failure:          "Failed to pull upstream changes in %s (exit code %d%s)",
		executionFailure: "Unable to pull upstream changes in %s: %s",
	},
	gitCheckoutSubcommandNameConstant: {
		start:            "Checking out in %s",
		success:          "Checked out in %s",
		failure:          "Failed to check out in %s (exit code %d%s)",
		executionFailure: "Unable to check out in %s: %s",
	},
	gitSymbolicRefSubcommandNameConstant: {
		start:            "Resolving the remote default branch in %s",
		success:          "Resolved the remote default branch in %s",
		failure:          "Failed to resolve the remote default branch in %s (exit code %d%s)",
		executionFailure: "Unable to resolve the remote default branch in %s: %s",
	},
	gitLSRemoteSubcommandNameConstant: {
		start:            "Listing remote tags from %s",
		success:          "Listed remote tags from %s",
		failure:          "Failed to list remote tags from %s (exit code %d%s)",
		executionFailure: "Unable to list remote tags from %s: %s",
	},
	gitBranchSubcommandNameConstant: {
		start:            "Listing local branches in %s",
		success:          "Listed local branches in %s",
		failure:          "Failed to list local branches in %s (exit code %d%s)",
		executionFailure: "Unable to list local branches in %s: %s",
	},
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	templates, known := gitSubcommandMessageTemplates[strings.TrimSpace(command.Details.Arguments[0])]
	if !known {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
