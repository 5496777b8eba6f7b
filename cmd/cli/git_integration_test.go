package cli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repostates/internal/execshell"
)

const (
	integrationGitExecutableConstant = "git"
	integrationCommandTimeout        = 10 * time.Second
	integrationOriginDirectoryName   = "origin.git"
	integrationSeedDirectoryName     = "seed"
	integrationCloneDirectoryName    = "service"
	integrationBranchNameConstant    = "main"
)

var integrationIdentityArguments = []string{
	"-c", "user.name=Repostates Test",
	"-c", "user.email=repostates@example.com",
	"-c", "commit.gpgsign=false",
	"-c", "tag.gpgsign=false",
}

func runGit(testInstance *testing.T, workingDirectory string, arguments ...string) {
	testInstance.Helper()
	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, integrationGitExecutableConstant, append(append([]string{}, integrationIdentityArguments...), arguments...)...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	outputBytes, runError := command.CombinedOutput()
	if runError != nil {
		testInstance.Fatalf("git %v failed: %v\n%s", arguments, runError, string(outputBytes))
	}
}

// prepareClonedWorkspace creates a bare origin with tagged history and a
// workspace holding one clone of it.
func prepareClonedWorkspace(testInstance *testing.T) (string, string) {
	testInstance.Helper()
	if testing.Short() {
		testInstance.Skip("git integration skipped in short mode")
	}
	if _, lookupError := exec.LookPath(integrationGitExecutableConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	scratchDirectory := testInstance.TempDir()
	originPath := filepath.Join(scratchDirectory, integrationOriginDirectoryName)
	seedPath := filepath.Join(scratchDirectory, integrationSeedDirectoryName)
	require.NoError(testInstance, os.MkdirAll(seedPath, 0o755))

	runGit(testInstance, scratchDirectory, "init", "--bare", originPath)
	runGit(testInstance, seedPath, "init")
	runGit(testInstance, seedPath, "checkout", "-b", integrationBranchNameConstant)
	for _, tagName := range []string{"v1.0.0", "v1.2.0", "v2.0.0-rc.1"} {
		require.NoError(testInstance, os.WriteFile(filepath.Join(seedPath, "VERSION"), []byte(tagName+"\n"), 0o600))
		runGit(testInstance, seedPath, "add", "VERSION")
		runGit(testInstance, seedPath, "commit", "-m", "release "+tagName)
		runGit(testInstance, seedPath, "tag", tagName)
	}
	runGit(testInstance, seedPath, "remote", "add", "origin", originPath)
	runGit(testInstance, seedPath, "push", "origin", integrationBranchNameConstant, "--tags")
	runGit(testInstance, originPath, "symbolic-ref", "HEAD", "refs/heads/"+integrationBranchNameConstant)

	workspaceRoot := filepath.Join(scratchDirectory, "workspace")
	require.NoError(testInstance, os.MkdirAll(workspaceRoot, 0o755))
	runGit(testInstance, workspaceRoot, "clone", originPath, integrationCloneDirectoryName)

	return workspaceRoot, filepath.Join(workspaceRoot, integrationCloneDirectoryName)
}

func TestGitIntegrationStatusReportsSynchronizedClone(testInstance *testing.T) {
	workspaceRoot, clonePath := prepareClonedWorkspace(testInstance)

	run := executeApplication(testInstance, execshell.NewOSCommandRunner(), "--dir", workspaceRoot)
	require.NoError(testInstance, run.executionError)
	require.Equal(testInstance, []string{integrationCloneDirectoryName, "main", "0", "0", "OK"}, tableRow(testInstance, run.standardOutput, integrationCloneDirectoryName))

	require.NoError(testInstance, os.WriteFile(filepath.Join(clonePath, "NOTES"), []byte("draft\n"), 0o600))
	dirtyRun := executeApplication(testInstance, execshell.NewOSCommandRunner(), "--dir", workspaceRoot, "--no-fetch")
	require.NoError(testInstance, dirtyRun.executionError)
	require.Equal(testInstance, "*main", tableRow(testInstance, dirtyRun.standardOutput, integrationCloneDirectoryName)[1])
}

func TestGitIntegrationCheckoutLatestReleaseTag(testInstance *testing.T) {
	workspaceRoot, _ := prepareClonedWorkspace(testInstance)

	run := executeApplication(testInstance, execshell.NewOSCommandRunner(), "--dir", workspaceRoot, "checkout-latest-tag")
	require.NoError(testInstance, run.executionError)
	require.Contains(testInstance, run.standardOutput, "Looking up latest release tags...\t✓\n")
	require.Equal(testInstance, []string{integrationCloneDirectoryName, "(tag)", "v1.2.0"}, tableRow(testInstance, run.standardOutput, integrationCloneDirectoryName)[:3])

	defaultRun := executeApplication(testInstance, execshell.NewOSCommandRunner(), "--dir", workspaceRoot, "checkout-default")
	require.NoError(testInstance, defaultRun.executionError)
	require.Equal(testInstance, []string{integrationCloneDirectoryName, "main", "0", "0", "OK"}, tableRow(testInstance, defaultRun.standardOutput, integrationCloneDirectoryName))
}
