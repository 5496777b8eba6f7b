package operations

import (
	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	pullNameConstant               = "pull"
	pullMessageConstant            = "Running git pull..."
	gitPullSubcommandConstant      = "pull"
	gitFastForwardOnlyFlagConstant = "--ff-only"
)

// Pull fast-forwards branches that track a reachable upstream.
type Pull struct{}

// Name identifies the operation.
func (Pull) Name() string { return pullNameConstant }

// Message returns the progress label.
func (Pull) Message() string { return pullMessageConstant }

// Requires the remote and status probes that establish eligibility.
func (Pull) Requires() []state.Stage {
	return []state.Stage{state.StageRemoteProbed, state.StageStatusProbed}
}

// Provides no stages.
func (Pull) Provides() []state.Stage { return nil }

// IsRelevant selects branches with a known remote and upstream.
func (Pull) IsRelevant(repositoryState *state.RepositoryState) bool {
	return repositoryState.ReferenceKind == state.ReferenceKindBranch &&
		state.KnownTrue(repositoryState.HasRemote) &&
		state.KnownTrue(repositoryState.HasUpstream)
}

// BuildCommand returns git pull --ff-only.
func (Pull) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	return buildGitCommand(repositoryState, gitPullSubcommandConstant, gitFastForwardOnlyFlagConstant)
}

// ApplyResult leaves the state untouched; a following status probe observes the outcome.
func (Pull) ApplyResult(*state.RepositoryState, execshell.ExecutionResult) {}
