package discovery_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repostates/internal/repos/discovery"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	gitMetadataDirectoryName       = ".git"
	repositoryDirectoryPermissions = 0o755
	gitFilePermissions             = 0o644
	gitFileContents                = "gitdir: /elsewhere/worktrees/linked\n"
)

type workspaceLayout struct {
	directoryRepositories []string
	gitFileRepositories   []string
	plainDirectories      []string
	plainFiles            []string
}

func (layout workspaceLayout) materialize(testInstance *testing.T) string {
	testInstance.Helper()
	rootDirectory := testInstance.TempDir()
	for _, repositoryName := range layout.directoryRepositories {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, repositoryName, gitMetadataDirectoryName), repositoryDirectoryPermissions))
	}
	for _, repositoryName := range layout.gitFileRepositories {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, repositoryName), repositoryDirectoryPermissions))
		require.NoError(testInstance, os.WriteFile(filepath.Join(rootDirectory, repositoryName, gitMetadataDirectoryName), []byte(gitFileContents), gitFilePermissions))
	}
	for _, directoryName := range layout.plainDirectories {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, directoryName), repositoryDirectoryPermissions))
	}
	for _, fileName := range layout.plainFiles {
		require.NoError(testInstance, os.WriteFile(filepath.Join(rootDirectory, fileName), []byte("notes"), gitFilePermissions))
	}
	return rootDirectory
}

func handleNames(handles []state.RepositoryHandle) []string {
	names := make([]string, 0, len(handles))
	for _, handle := range handles {
		names = append(names, handle.Name)
	}
	return names
}

func TestDiscoverRepositories(testInstance *testing.T) {
	layout := workspaceLayout{
		directoryRepositories: []string{"api", "web-frontend", "web-backend", "legacy-tool"},
		gitFileRepositories:   []string{"linked-worktree"},
		plainDirectories:      []string{"docs", filepath.Join("nested", "inner", gitMetadataDirectoryName)},
		plainFiles:            []string{"README.md"},
	}

	testCases := []struct {
		name          string
		options       discovery.Options
		expectedNames []string
	}{
		{
			name:          "all_working_copies",
			options:       discovery.Options{},
			expectedNames: []string{"api", "legacy-tool", "linked-worktree", "web-backend", "web-frontend"},
		},
		{
			name:          "search_semantics",
			options:       discovery.Options{NameFilter: "end"},
			expectedNames: []string{"web-backend", "web-frontend"},
		},
		{
			name:          "anchored_filter",
			options:       discovery.Options{NameFilter: "^web-"},
			expectedNames: []string{"web-backend", "web-frontend"},
		},
		{
			name:          "exclusions",
			options:       discovery.Options{ExcludePatterns: []string{"web-*", "legacy-?ool"}},
			expectedNames: []string{"api", "linked-worktree"},
		},
		{
			name:          "filter_and_exclusions",
			options:       discovery.Options{NameFilter: "web", ExcludePatterns: []string{"*-frontend"}},
			expectedNames: []string{"web-backend"},
		},
		{
			name:          "no_matches",
			options:       discovery.Options{NameFilter: "^mobile"},
			expectedNames: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rootDirectory := layout.materialize(testInstance)

			handles, discoveryError := discovery.DiscoverRepositories(rootDirectory, testCase.options)
			require.NoError(testInstance, discoveryError)
			require.Equal(testInstance, testCase.expectedNames, handleNames(handles))
			for _, handle := range handles {
				require.True(testInstance, filepath.IsAbs(handle.Path))
				require.Equal(testInstance, filepath.Join(rootDirectory, handle.Name), handle.Path)
			}
		})
	}
}

func TestDiscoverRepositoriesRejectsInvalidPatterns(testInstance *testing.T) {
	rootDirectory := workspaceLayout{directoryRepositories: []string{"api"}}.materialize(testInstance)

	_, filterError := discovery.DiscoverRepositories(rootDirectory, discovery.Options{NameFilter: "(unclosed"})
	require.Error(testInstance, filterError)
	require.True(testInstance, errors.Is(filterError, discovery.ErrInvalidNameFilter))
	var typedFilterError discovery.InvalidNameFilterError
	require.True(testInstance, errors.As(filterError, &typedFilterError))
	require.Equal(testInstance, "(unclosed", typedFilterError.Pattern)

	_, excludeError := discovery.DiscoverRepositories(rootDirectory, discovery.Options{ExcludePatterns: []string{"[unclosed"}})
	require.True(testInstance, errors.Is(excludeError, discovery.ErrInvalidExcludePattern))
}

func TestDiscoverRepositoriesReportsMissingRoot(testInstance *testing.T) {
	missingRoot := filepath.Join(testInstance.TempDir(), "absent")
	_, discoveryError := discovery.DiscoverRepositories(missingRoot, discovery.Options{})
	require.Error(testInstance, discoveryError)
	require.True(testInstance, errors.Is(discoveryError, os.ErrNotExist))
}

func TestDiscoverRepositoriesResolvesRelativeRoot(testInstance *testing.T) {
	rootDirectory := workspaceLayout{directoryRepositories: []string{"api"}}.materialize(testInstance)
	originalWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	require.NoError(testInstance, os.Chdir(rootDirectory))
	testInstance.Cleanup(func() { _ = os.Chdir(originalWorkingDirectory) })

	handles, discoveryError := discovery.DiscoverRepositories(".", discovery.Options{})
	require.NoError(testInstance, discoveryError)
	require.Len(testInstance, handles, 1)
	require.True(testInstance, filepath.IsAbs(handles[0].Path))
}
