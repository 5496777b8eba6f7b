package operations

import (
	"errors"
	"fmt"

	"github.com/google/shlex"

	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	customCommandNameConstant            = "custom-command"
	customCommandMessageTemplateConstant = "Running custom command: %s"
	emptyCustomCommandMessageConstant    = "custom command is empty"
	customCommandParseTemplateConstant   = "unable to parse custom command %q: %w"
)

// ErrEmptyCustomCommand indicates a custom command without any tokens.
var ErrEmptyCustomCommand = errors.New(emptyCustomCommandMessageConstant)

// CustomCommand runs an arbitrary command in every repository and records its output verbatim.
type CustomCommand struct {
	text      string
	arguments []string
}

// NewCustomCommand tokenizes the command text using shell quoting rules.
func NewCustomCommand(text string) (CustomCommand, error) {
	tokens, splitError := shlex.Split(text)
	if splitError != nil {
		return CustomCommand{}, fmt.Errorf(customCommandParseTemplateConstant, text, splitError)
	}
	if len(tokens) == 0 {
		return CustomCommand{}, ErrEmptyCustomCommand
	}
	return CustomCommand{text: text, arguments: tokens}, nil
}

// Text returns the command as supplied.
func (command CustomCommand) Text() string { return command.text }

// Arguments returns the tokenized command, executable first.
func (command CustomCommand) Arguments() []string {
	return append([]string(nil), command.arguments...)
}

// Name identifies the operation.
func (CustomCommand) Name() string { return customCommandNameConstant }

// Message returns the progress label.
func (command CustomCommand) Message() string {
	return fmt.Sprintf(customCommandMessageTemplateConstant, command.text)
}

// Requires returns no stages.
func (CustomCommand) Requires() []state.Stage { return nil }

// Provides marks the custom command output as recorded.
func (CustomCommand) Provides() []state.Stage {
	return []state.Stage{state.StageCustomCommandRun}
}

// IsRelevant applies to every repository.
func (CustomCommand) IsRelevant(repositoryState *state.RepositoryState) bool {
	return alwaysRelevant(repositoryState)
}

// BuildCommand returns the tokenized command rooted at the repository path.
func (command CustomCommand) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandName(command.arguments[0]),
		Details: execshell.CommandDetails{
			Arguments:        command.Arguments()[1:],
			WorkingDirectory: repositoryState.Path(),
		},
	}
}

// ApplyResult records the exit code and both output streams.
func (CustomCommand) ApplyResult(repositoryState *state.RepositoryState, result execshell.ExecutionResult) {
	repositoryState.CustomExitCode = state.IntPointer(result.ExitCode)
	repositoryState.CustomOutput = state.StringPointer(result.StandardOutput)
	repositoryState.CustomError = state.StringPointer(result.StandardError)
}
