package operations

import (
	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	detailedStatusNameConstant      = "detailed-status"
	detailedStatusMessageConstant   = "Reading detailed git status..."
	gitStatusSubcommandConstant     = "status"
	gitPorcelainVersionFlagConstant = "--porcelain=v2"
	gitBranchHeadersFlagConstant    = "--branch"
)

// DetailedStatus reads the porcelain v2 branch headers and working tree entries.
type DetailedStatus struct{}

// Name identifies the operation.
func (DetailedStatus) Name() string { return detailedStatusNameConstant }

// Message returns the progress label.
func (DetailedStatus) Message() string { return detailedStatusMessageConstant }

// Requires returns no stages.
func (DetailedStatus) Requires() []state.Stage { return nil }

// Provides marks the working tree status as probed.
func (DetailedStatus) Provides() []state.Stage { return []state.Stage{state.StageStatusProbed} }

// IsRelevant applies to every repository.
func (DetailedStatus) IsRelevant(repositoryState *state.RepositoryState) bool {
	return alwaysRelevant(repositoryState)
}

// BuildCommand returns git status --porcelain=v2 --branch.
func (DetailedStatus) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	return buildGitCommand(repositoryState, gitStatusSubcommandConstant, gitPorcelainVersionFlagConstant, gitBranchHeadersFlagConstant)
}

// ApplyResult overwrites the reference, upstream presence, counts, and cleanliness.
// An upstream already known to be missing is never flipped back to present.
func (DetailedStatus) ApplyResult(repositoryState *state.RepositoryState, result execshell.ExecutionResult) {
	if !succeeded(result) {
		repositoryState.CommitsAhead = nil
		repositoryState.CommitsBehind = nil
		return
	}

	branchStatus := ParseBranchStatus(result.StandardOutput)
	repositoryState.ObjectID = branchStatus.ObjectID
	repositoryState.IsClean = branchStatus.IsClean
	repositoryState.CommitsAhead = branchStatus.CommitsAhead
	repositoryState.CommitsBehind = branchStatus.CommitsBehind
	repositoryState.Upstream = branchStatus.Upstream

	switch {
	case branchStatus.Head == nil:
		repositoryState.Reference = nil
		repositoryState.ReferenceKind = state.ReferenceKindUnknown
	case branchStatus.Detached:
		repositoryState.Reference = state.StringPointer(repositoryState.ShortObjectID())
		repositoryState.ReferenceKind = state.ReferenceKindDetached
	default:
		repositoryState.Reference = state.StringPointer(*branchStatus.Head)
		repositoryState.ReferenceKind = state.ReferenceKindBranch
	}

	// No upstream header clears HasUpstream even when an earlier run set it.
	if branchStatus.Upstream == nil {
		repositoryState.HasUpstream = state.BoolPointer(false)
		return
	}
	if !state.KnownFalse(repositoryState.HasUpstream) {
		repositoryState.HasUpstream = state.BoolPointer(true)
	}
}
