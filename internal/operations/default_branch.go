package operations

import (
	"strings"

	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	defaultBranchProbeNameConstant    = "default-branch-probe"
	defaultBranchProbeMessageConstant = "Resolving default branches..."
	gitSymbolicRefSubcommandConstant  = "symbolic-ref"
	originHeadReferenceConstant       = "refs/remotes/origin/HEAD"
	referenceSeparatorConstant        = "/"
)

// NormalizeDefaultBranch reduces a symbolic reference such as
// refs/remotes/origin/main to its final path segment.
func NormalizeDefaultBranch(output string) (string, bool) {
	reference := strings.TrimSpace(output)
	if len(reference) == 0 {
		return "", false
	}
	separatorIndex := strings.LastIndex(reference, referenceSeparatorConstant)
	branchName := reference[separatorIndex+1:]
	if len(branchName) == 0 {
		return "", false
	}
	return branchName, true
}

// DefaultBranchProbe resolves the branch origin/HEAD points at.
type DefaultBranchProbe struct{}

// Name identifies the operation.
func (DefaultBranchProbe) Name() string { return defaultBranchProbeNameConstant }

// Message returns the progress label.
func (DefaultBranchProbe) Message() string { return defaultBranchProbeMessageConstant }

// Requires returns no stages.
func (DefaultBranchProbe) Requires() []state.Stage { return nil }

// Provides marks the default branch as probed.
func (DefaultBranchProbe) Provides() []state.Stage {
	return []state.Stage{state.StageDefaultBranchProbed}
}

// IsRelevant applies to every repository.
func (DefaultBranchProbe) IsRelevant(repositoryState *state.RepositoryState) bool {
	return alwaysRelevant(repositoryState)
}

// BuildCommand returns git symbolic-ref refs/remotes/origin/HEAD.
func (DefaultBranchProbe) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	return buildGitCommand(repositoryState, gitSymbolicRefSubcommandConstant, originHeadReferenceConstant)
}

// ApplyResult records the default branch when git resolved it.
func (DefaultBranchProbe) ApplyResult(repositoryState *state.RepositoryState, result execshell.ExecutionResult) {
	repositoryState.DefaultBranch = nil
	if !succeeded(result) {
		return
	}
	if branchName, resolved := NormalizeDefaultBranch(result.StandardOutput); resolved {
		repositoryState.DefaultBranch = state.StringPointer(branchName)
	}
}
