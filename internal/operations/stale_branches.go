package operations

import (
	"strings"
	"unicode"

	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	staleBranchScanNameConstant       = "stale-branch-scan"
	staleBranchScanMessageConstant    = "Scanning for branches with gone upstreams..."
	gitBranchSubcommandConstant       = "branch"
	gitVeryVerboseFlagConstant        = "-vv"
	goneUpstreamMarkerConstant        = ": gone]"
	currentBranchMarkerConstant       = "*"
	worktreeBranchMarkerConstant      = "+ "
	worktreePathOpeningConstant       = "("
	worktreePathClosingConstant       = ")"
	trackingAnnotationOpeningConstant = "["
	trackingAnnotationClosingConstant = "]"
)

// ParseStaleBranches returns local branches whose upstream has been deleted,
// excluding the checked-out branch. Only the tracking annotation, the first
// bracketed field after the commit id, is inspected for the gone marker.
func ParseStaleBranches(output string) []string {
	staleBranches := []string{}
	for _, line := range strings.Split(output, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if strings.HasPrefix(trimmedLine, currentBranchMarkerConstant) {
			continue
		}
		trimmedLine = strings.TrimSpace(strings.TrimPrefix(trimmedLine, worktreeBranchMarkerConstant))

		branchName, remainder := splitLeadingField(trimmedLine)
		if len(branchName) == 0 {
			continue
		}
		_, remainder = splitLeadingField(remainder)
		if strings.HasPrefix(remainder, worktreePathOpeningConstant) {
			closingIndex := strings.Index(remainder, worktreePathClosingConstant)
			if closingIndex < 0 {
				continue
			}
			remainder = strings.TrimSpace(remainder[closingIndex+len(worktreePathClosingConstant):])
		}
		if !strings.HasPrefix(remainder, trackingAnnotationOpeningConstant) {
			continue
		}
		annotationEnd := strings.Index(remainder, trackingAnnotationClosingConstant)
		if annotationEnd < 0 {
			continue
		}
		if strings.HasSuffix(remainder[:annotationEnd+len(trackingAnnotationClosingConstant)], goneUpstreamMarkerConstant) {
			staleBranches = append(staleBranches, branchName)
		}
	}
	return staleBranches
}

func splitLeadingField(text string) (string, string) {
	trimmedText := strings.TrimSpace(text)
	separatorIndex := strings.IndexFunc(trimmedText, unicode.IsSpace)
	if separatorIndex < 0 {
		return trimmedText, ""
	}
	return trimmedText[:separatorIndex], strings.TrimSpace(trimmedText[separatorIndex:])
}

// StaleBranchScan lists local branches whose upstream is gone.
type StaleBranchScan struct{}

// Name identifies the operation.
func (StaleBranchScan) Name() string { return staleBranchScanNameConstant }

// Message returns the progress label.
func (StaleBranchScan) Message() string { return staleBranchScanMessageConstant }

// Requires returns no stages.
func (StaleBranchScan) Requires() []state.Stage { return nil }

// Provides marks stale branches as scanned.
func (StaleBranchScan) Provides() []state.Stage {
	return []state.Stage{state.StageStaleBranchesScanned}
}

// IsRelevant applies to every repository.
func (StaleBranchScan) IsRelevant(repositoryState *state.RepositoryState) bool {
	return alwaysRelevant(repositoryState)
}

// BuildCommand returns git branch -vv.
func (StaleBranchScan) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	return buildGitCommand(repositoryState, gitBranchSubcommandConstant, gitVeryVerboseFlagConstant)
}

// ApplyResult records the stale branches, or marks them undetermined on failure.
func (StaleBranchScan) ApplyResult(repositoryState *state.RepositoryState, result execshell.ExecutionResult) {
	if !succeeded(result) {
		repositoryState.StaleBranches = nil
		repositoryState.StaleBranchesKnown = false
		return
	}
	repositoryState.StaleBranches = ParseStaleBranches(result.StandardOutput)
	repositoryState.StaleBranchesKnown = true
}
