package operations_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/operations"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	operationsRepositoryNameConstant = "service"
	operationsRepositoryPathConstant = "/workspace/service"
	fullObjectIDConstant             = "9f8e7d6c5b4a39281706f5e4d3c2b1a0f9e8d7c6"
	shortObjectIDConstant            = "9f8e7d6"
)

func newTestState() *state.RepositoryState {
	return state.NewRepositoryState(state.RepositoryHandle{Name: operationsRepositoryNameConstant, Path: operationsRepositoryPathConstant})
}

func TestOperationsBuildGitCommands(testInstance *testing.T) {
	customCommand, customCommandError := operations.NewCustomCommand(`echo "hello world"`)
	require.NoError(testInstance, customCommandError)

	populatedState := newTestState()
	populatedState.DefaultBranch = state.StringPointer("main")
	populatedState.LatestReleaseTag = state.StringPointer("v1.9.0")

	testCases := []struct {
		name              string
		operation         operations.Operation
		expectedName      execshell.CommandName
		expectedArguments []string
	}{
		{name: "refresh_remote", operation: operations.RefreshRemote{}, expectedName: execshell.CommandGit, expectedArguments: []string{"fetch", "origin", "--prune"}},
		{name: "detailed_status", operation: operations.DetailedStatus{}, expectedName: execshell.CommandGit, expectedArguments: []string{"status", "--porcelain=v2", "--branch"}},
		{name: "describe", operation: operations.Describe{}, expectedName: execshell.CommandGit, expectedArguments: []string{"describe", "--tags", "--exact-match"}},
		{name: "pull", operation: operations.Pull{}, expectedName: execshell.CommandGit, expectedArguments: []string{"pull", "--ff-only"}},
		{name: "checkout", operation: operations.NewCheckout("main; rm -rf /"), expectedName: execshell.CommandGit, expectedArguments: []string{"checkout", "main"}},
		{name: "checkout_default_branch", operation: operations.NewCheckoutSpecial(operations.CheckoutFieldDefaultBranch), expectedName: execshell.CommandGit, expectedArguments: []string{"checkout", "main"}},
		{name: "checkout_latest_tag", operation: operations.NewCheckoutSpecial(operations.CheckoutFieldLatestReleaseTag), expectedName: execshell.CommandGit, expectedArguments: []string{"checkout", "v1.9.0"}},
		{name: "default_branch_probe", operation: operations.DefaultBranchProbe{}, expectedName: execshell.CommandGit, expectedArguments: []string{"symbolic-ref", "refs/remotes/origin/HEAD"}},
		{name: "latest_release_tag_probe", operation: operations.LatestReleaseTagProbe{}, expectedName: execshell.CommandGit, expectedArguments: []string{"ls-remote", "--tags", "--sort=-v:refname", "origin"}},
		{name: "stale_branch_scan", operation: operations.StaleBranchScan{}, expectedName: execshell.CommandGit, expectedArguments: []string{"branch", "-vv"}},
		{name: "custom_command", operation: customCommand, expectedName: execshell.CommandName("echo"), expectedArguments: []string{"hello world"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := testCase.operation.BuildCommand(populatedState)
			require.Equal(testInstance, testCase.expectedName, command.Name)
			require.Equal(testInstance, testCase.expectedArguments, command.Details.Arguments)
			require.Equal(testInstance, operationsRepositoryPathConstant, command.Details.WorkingDirectory)
			require.NotEmpty(testInstance, testCase.operation.Name())
			require.NotEmpty(testInstance, testCase.operation.Message())
		})
	}
}

func TestRefreshRemoteRecordsReachability(testInstance *testing.T) {
	repositoryState := newTestState()
	operations.RefreshRemote{}.ApplyResult(repositoryState, execshell.ExecutionResult{ExitCode: 0})
	require.True(testInstance, state.KnownTrue(repositoryState.HasRemote))
	require.True(testInstance, state.KnownTrue(repositoryState.HasUpstream))

	operations.RefreshRemote{}.ApplyResult(repositoryState, execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: no such remote"})
	require.True(testInstance, state.KnownFalse(repositoryState.HasRemote))
	require.True(testInstance, state.KnownFalse(repositoryState.HasUpstream))
}

func TestDetailedStatusApplyResult(testInstance *testing.T) {
	testInstance.Run("tracking_branch", func(testInstance *testing.T) {
		repositoryState := newTestState()
		repositoryState.HasRemote = state.BoolPointer(true)
		repositoryState.HasUpstream = state.BoolPointer(true)

		operations.DetailedStatus{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: branchStatusCleanOutputConstant})

		require.Equal(testInstance, state.ReferenceKindBranch, repositoryState.ReferenceKind)
		require.Equal(testInstance, "main", *repositoryState.Reference)
		require.Equal(testInstance, "origin/main", *repositoryState.Upstream)
		require.Equal(testInstance, 2, *repositoryState.CommitsAhead)
		require.Equal(testInstance, 1, *repositoryState.CommitsBehind)
		require.True(testInstance, repositoryState.IsClean)
		require.True(testInstance, state.KnownTrue(repositoryState.HasUpstream))
		require.Equal(testInstance, state.StatusCritical, state.Classify(repositoryState))
	})

	testInstance.Run("detached_head_uses_short_object_id", func(testInstance *testing.T) {
		repositoryState := newTestState()
		operations.DetailedStatus{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: branchStatusDetachedOutputConstant})

		require.Equal(testInstance, state.ReferenceKindDetached, repositoryState.ReferenceKind)
		require.Equal(testInstance, shortObjectIDConstant, *repositoryState.Reference)
		require.Nil(testInstance, repositoryState.CommitsAhead)
		require.True(testInstance, state.KnownFalse(repositoryState.HasUpstream))
	})

	testInstance.Run("known_missing_upstream_is_not_restored", func(testInstance *testing.T) {
		repositoryState := newTestState()
		repositoryState.HasUpstream = state.BoolPointer(false)
		operations.DetailedStatus{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: branchStatusCleanOutputConstant})
		require.True(testInstance, state.KnownFalse(repositoryState.HasUpstream))
	})

	testInstance.Run("lost_upstream_clears_presence_and_counts", func(testInstance *testing.T) {
		repositoryState := newTestState()
		operations.DetailedStatus{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: branchStatusCleanOutputConstant})
		operations.DetailedStatus{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: "# branch.oid abc\n# branch.head main\n"})
		require.True(testInstance, state.KnownFalse(repositoryState.HasUpstream))
		require.Nil(testInstance, repositoryState.CommitsAhead)
		require.Nil(testInstance, repositoryState.CommitsBehind)
	})

	testInstance.Run("failure_clears_counts_only", func(testInstance *testing.T) {
		repositoryState := newTestState()
		operations.DetailedStatus{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: branchStatusCleanOutputConstant})
		operations.DetailedStatus{}.ApplyResult(repositoryState, execshell.ExecutionResult{ExitCode: 128})

		require.Nil(testInstance, repositoryState.CommitsAhead)
		require.Nil(testInstance, repositoryState.CommitsBehind)
		require.Equal(testInstance, state.ReferenceKindBranch, repositoryState.ReferenceKind)
		require.Equal(testInstance, "main", *repositoryState.Reference)
		require.True(testInstance, repositoryState.IsClean)
	})

	testInstance.Run("missing_head_header_is_unknown", func(testInstance *testing.T) {
		repositoryState := newTestState()
		operations.DetailedStatus{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: "# branch.oid (initial)\n"})
		require.Equal(testInstance, state.ReferenceKindUnknown, repositoryState.ReferenceKind)
		require.Equal(testInstance, state.StatusCritical, state.Classify(repositoryState))
	})

	testInstance.Run("dirty_tree", func(testInstance *testing.T) {
		repositoryState := newTestState()
		operations.DetailedStatus{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: branchStatusDirtyOutputConstant})
		require.False(testInstance, repositoryState.IsClean)
		require.Equal(testInstance, "feature", *repositoryState.Reference)
	})
}

func TestDetailedStatusIsIdempotent(testInstance *testing.T) {
	result := execshell.ExecutionResult{StandardOutput: branchStatusCleanOutputConstant}
	onceState := newTestState()
	onceState.HasRemote = state.BoolPointer(true)
	onceState.HasUpstream = state.BoolPointer(true)
	operations.DetailedStatus{}.ApplyResult(onceState, result)

	twiceState := newTestState()
	twiceState.HasRemote = state.BoolPointer(true)
	twiceState.HasUpstream = state.BoolPointer(true)
	operations.DetailedStatus{}.ApplyResult(twiceState, result)
	operations.DetailedStatus{}.ApplyResult(twiceState, result)

	require.Equal(testInstance, onceState, twiceState)
}

func TestDescribeApplyResult(testInstance *testing.T) {
	detachedState := func() *state.RepositoryState {
		repositoryState := newTestState()
		repositoryState.ObjectID = fullObjectIDConstant
		repositoryState.ReferenceKind = state.ReferenceKindDetached
		repositoryState.Reference = state.StringPointer(shortObjectIDConstant)
		return repositoryState
	}

	require.True(testInstance, operations.Describe{}.IsRelevant(detachedState()))
	require.False(testInstance, operations.Describe{}.IsRelevant(newTestState()))

	taggedState := detachedState()
	operations.Describe{}.ApplyResult(taggedState, execshell.ExecutionResult{StandardOutput: "v1.0.0\n"})
	require.Equal(testInstance, state.ReferenceKindTag, taggedState.ReferenceKind)
	require.Equal(testInstance, "v1.0.0", *taggedState.Reference)

	commitState := detachedState()
	operations.Describe{}.ApplyResult(commitState, execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: no tag exactly matches"})
	require.Equal(testInstance, state.ReferenceKindCommit, commitState.ReferenceKind)
	require.Equal(testInstance, shortObjectIDConstant, *commitState.Reference)
}

func TestPullRelevance(testInstance *testing.T) {
	eligibleState := newTestState()
	eligibleState.ReferenceKind = state.ReferenceKindBranch
	eligibleState.HasRemote = state.BoolPointer(true)
	eligibleState.HasUpstream = state.BoolPointer(true)
	require.True(testInstance, operations.Pull{}.IsRelevant(eligibleState))

	withoutUpstream := newTestState()
	withoutUpstream.ReferenceKind = state.ReferenceKindBranch
	withoutUpstream.HasRemote = state.BoolPointer(true)
	withoutUpstream.HasUpstream = state.BoolPointer(false)
	require.False(testInstance, operations.Pull{}.IsRelevant(withoutUpstream))

	detached := newTestState()
	detached.ReferenceKind = state.ReferenceKindDetached
	detached.HasRemote = state.BoolPointer(true)
	detached.HasUpstream = state.BoolPointer(true)
	require.False(testInstance, operations.Pull{}.IsRelevant(detached))

	require.False(testInstance, operations.Pull{}.IsRelevant(newTestState()))
}

func TestCheckoutSanitizesTarget(testInstance *testing.T) {
	sanitized := operations.NewCheckout("main; rm -rf /")
	require.Equal(testInstance, "main", sanitized.Target())
	require.Equal(testInstance, "main; rm -rf /", sanitized.OriginalTarget())
	require.True(testInstance, sanitized.WasSanitized())

	untouched := operations.NewCheckout("main")
	require.Equal(testInstance, "main", untouched.Target())
	require.False(testInstance, untouched.WasSanitized())
}

func TestCheckoutSpecialRequiresPopulatedField(testInstance *testing.T) {
	defaultBranchCheckout := operations.NewCheckoutSpecial(operations.CheckoutFieldDefaultBranch)
	latestTagCheckout := operations.NewCheckoutSpecial(operations.CheckoutFieldLatestReleaseTag)

	repositoryState := newTestState()
	require.False(testInstance, defaultBranchCheckout.IsRelevant(repositoryState))
	require.False(testInstance, latestTagCheckout.IsRelevant(repositoryState))

	repositoryState.DefaultBranch = state.StringPointer("main")
	require.True(testInstance, defaultBranchCheckout.IsRelevant(repositoryState))
	require.False(testInstance, latestTagCheckout.IsRelevant(repositoryState))

	require.Equal(testInstance, []state.Stage{state.StageDefaultBranchProbed}, defaultBranchCheckout.Requires())
	require.Equal(testInstance, []state.Stage{state.StageLatestTagProbed}, latestTagCheckout.Requires())
}

func TestProbesApplyResult(testInstance *testing.T) {
	repositoryState := newTestState()

	operations.DefaultBranchProbe{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: "refs/remotes/origin/develop\n"})
	require.Equal(testInstance, "develop", *repositoryState.DefaultBranch)

	operations.DefaultBranchProbe{}.ApplyResult(repositoryState, execshell.ExecutionResult{ExitCode: 128})
	require.Nil(testInstance, repositoryState.DefaultBranch)

	operations.LatestReleaseTagProbe{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: lsRemoteOutputConstant})
	require.Equal(testInstance, "v1.9.0", *repositoryState.LatestReleaseTag)

	operations.LatestReleaseTagProbe{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: "aaa\trefs/tags/nightly\n"})
	require.Nil(testInstance, repositoryState.LatestReleaseTag)
}

func TestStaleBranchScanApplyResult(testInstance *testing.T) {
	repositoryState := newTestState()
	operations.StaleBranchScan{}.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: staleBranchOutputConstant})
	require.True(testInstance, repositoryState.StaleBranchesKnown)
	require.Equal(testInstance, []string{"old-feat"}, repositoryState.StaleBranches)

	operations.StaleBranchScan{}.ApplyResult(repositoryState, execshell.ExecutionResult{ExitCode: 128})
	require.False(testInstance, repositoryState.StaleBranchesKnown)
	require.Nil(testInstance, repositoryState.StaleBranches)
}

func TestCustomCommand(testInstance *testing.T) {
	_, emptyError := operations.NewCustomCommand("   ")
	require.True(testInstance, errors.Is(emptyError, operations.ErrEmptyCustomCommand))

	_, unterminatedError := operations.NewCustomCommand(`echo "unterminated`)
	require.Error(testInstance, unterminatedError)

	customCommand, constructionError := operations.NewCustomCommand("git log -1 --format='%h %s'")
	require.NoError(testInstance, constructionError)
	require.Equal(testInstance, []string{"git", "log", "-1", "--format=%h %s"}, customCommand.Arguments())
	require.Equal(testInstance, "Running custom command: git log -1 --format='%h %s'", customCommand.Message())

	repositoryState := newTestState()
	customCommand.ApplyResult(repositoryState, execshell.ExecutionResult{StandardOutput: "abc fix\n", StandardError: "warn\n", ExitCode: 2})
	require.Equal(testInstance, 2, *repositoryState.CustomExitCode)
	require.Equal(testInstance, "abc fix\n", *repositoryState.CustomOutput)
	require.Equal(testInstance, "warn\n", *repositoryState.CustomError)
}
