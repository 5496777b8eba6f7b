package operations

import (
	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	refreshRemoteNameConstant    = "refresh-remote"
	refreshRemoteMessageConstant = "Fetching origin with prune..."
	gitFetchSubcommandConstant   = "fetch"
	gitOriginRemoteConstant      = "origin"
	gitPruneFlagConstant         = "--prune"
)

// RefreshRemote fetches origin with pruning and records whether the remote answered.
type RefreshRemote struct{}

// Name identifies the operation.
func (RefreshRemote) Name() string { return refreshRemoteNameConstant }

// Message returns the progress label.
func (RefreshRemote) Message() string { return refreshRemoteMessageConstant }

// Requires returns no stages.
func (RefreshRemote) Requires() []state.Stage { return nil }

// Provides marks the remote as probed.
func (RefreshRemote) Provides() []state.Stage { return []state.Stage{state.StageRemoteProbed} }

// IsRelevant applies to every repository.
func (RefreshRemote) IsRelevant(repositoryState *state.RepositoryState) bool {
	return alwaysRelevant(repositoryState)
}

// BuildCommand returns git fetch origin --prune.
func (RefreshRemote) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	return buildGitCommand(repositoryState, gitFetchSubcommandConstant, gitOriginRemoteConstant, gitPruneFlagConstant)
}

// ApplyResult treats a successful fetch as proof of both a remote and an upstream.
func (RefreshRemote) ApplyResult(repositoryState *state.RepositoryState, result execshell.ExecutionResult) {
	reachable := succeeded(result)
	repositoryState.HasRemote = state.BoolPointer(reachable)
	repositoryState.HasUpstream = state.BoolPointer(reachable)
}
