package execshell

import "context"

const (
	gitExecutableNameConstant = "git"
)

// CommandName identifies the executable started for a command.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = CommandName(gitExecutableNameConstant)

// CommandDetails describes the arguments and process environment of an invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// RunningCommand is a process that has been started and not yet collected.
type RunningCommand interface {
	// Wait blocks until the process exits and returns its captured output.
	Wait() (ExecutionResult, error)
}

// CommandRunner starts external processes.
type CommandRunner interface {
	// Start launches the command and returns without waiting for it to exit.
	Start(executionContext context.Context, command ShellCommand) (RunningCommand, error)
}
