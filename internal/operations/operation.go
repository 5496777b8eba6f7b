package operations

import (
	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

// Operation is one pipeline step executed against every relevant repository.
type Operation interface {
	// Name identifies the operation in logs.
	Name() string
	// Message is the progress label shown while the operation runs.
	Message() string
	// Requires lists the stages that must be completed before the operation runs.
	Requires() []state.Stage
	// Provides lists the stages completed once the operation has applied its results.
	Provides() []state.Stage
	// IsRelevant reports whether the operation should run for the repository.
	IsRelevant(repositoryState *state.RepositoryState) bool
	// BuildCommand returns the process to start for the repository.
	BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand
	// ApplyResult folds a finished process into the repository state.
	ApplyResult(repositoryState *state.RepositoryState, result execshell.ExecutionResult)
}

func buildGitCommand(repositoryState *state.RepositoryState, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: repositoryState.Path(),
		},
	}
}

func succeeded(result execshell.ExecutionResult) bool {
	return result.ExitCode == 0
}

func alwaysRelevant(*state.RepositoryState) bool {
	return true
}
