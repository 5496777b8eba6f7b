package operations

import (
	"strings"

	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	describeNameConstant          = "describe"
	describeMessageConstant       = "Resolving detached heads..."
	gitDescribeSubcommandConstant = "describe"
	gitTagsFlagConstant           = "--tags"
	gitExactMatchFlagConstant     = "--exact-match"
)

// Describe resolves a detached HEAD to the tag pointing at it, or to its commit.
type Describe struct{}

// Name identifies the operation.
func (Describe) Name() string { return describeNameConstant }

// Message returns the progress label.
func (Describe) Message() string { return describeMessageConstant }

// Requires the status probe that detects detached heads.
func (Describe) Requires() []state.Stage { return []state.Stage{state.StageStatusProbed} }

// Provides no stages.
func (Describe) Provides() []state.Stage { return nil }

// IsRelevant selects repositories with a detached HEAD.
func (Describe) IsRelevant(repositoryState *state.RepositoryState) bool {
	return repositoryState.ReferenceKind == state.ReferenceKindDetached
}

// BuildCommand returns git describe --tags --exact-match.
func (Describe) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	return buildGitCommand(repositoryState, gitDescribeSubcommandConstant, gitTagsFlagConstant, gitExactMatchFlagConstant)
}

// ApplyResult records the exact tag, falling back to the abbreviated commit.
func (Describe) ApplyResult(repositoryState *state.RepositoryState, result execshell.ExecutionResult) {
	tagName := strings.TrimSpace(result.StandardOutput)
	if succeeded(result) && len(tagName) > 0 {
		repositoryState.Reference = state.StringPointer(tagName)
		repositoryState.ReferenceKind = state.ReferenceKindTag
		return
	}
	repositoryState.Reference = state.StringPointer(repositoryState.ShortObjectID())
	repositoryState.ReferenceKind = state.ReferenceKindCommit
}
