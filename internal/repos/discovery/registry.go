package discovery

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/temirov/repostates/internal/repos/filesystem"
	"github.com/temirov/repostates/internal/repos/shared"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	gitMetadataEntryNameConstant         = ".git"
	invalidNameFilterMessageConstant     = "invalid repository name filter"
	invalidExcludePatternMessageConstant = "invalid repository exclude pattern"
	invalidPatternErrorTemplateConstant  = "%s %q: %v"
	resolveRootErrorTemplateConstant     = "unable to resolve root directory %s: %w"
	readRootErrorTemplateConstant        = "unable to list root directory %s: %w"
)

// ErrInvalidNameFilter indicates a name filter that is not a valid regular expression.
var ErrInvalidNameFilter = errors.New(invalidNameFilterMessageConstant)

// ErrInvalidExcludePattern indicates an exclusion that is not a valid glob.
var ErrInvalidExcludePattern = errors.New(invalidExcludePatternMessageConstant)

// InvalidNameFilterError reports the rejected pattern and the compiler's reason.
type InvalidNameFilterError struct {
	Pattern string
	Cause   error
}

// Error describes the rejected pattern.
func (filterError InvalidNameFilterError) Error() string {
	return fmt.Sprintf(invalidPatternErrorTemplateConstant, invalidNameFilterMessageConstant, filterError.Pattern, filterError.Cause)
}

// Unwrap exposes ErrInvalidNameFilter.
func (filterError InvalidNameFilterError) Unwrap() error {
	return ErrInvalidNameFilter
}

// InvalidExcludePatternError reports a malformed exclusion glob.
type InvalidExcludePatternError struct {
	Pattern string
}

// Error describes the rejected glob.
func (patternError InvalidExcludePatternError) Error() string {
	return fmt.Sprintf(invalidPatternErrorTemplateConstant, invalidExcludePatternMessageConstant, patternError.Pattern, doublestar.ErrBadPattern)
}

// Unwrap exposes ErrInvalidExcludePattern.
func (patternError InvalidExcludePatternError) Unwrap() error {
	return ErrInvalidExcludePattern
}

// Options narrows which subdirectories are registered.
type Options struct {
	// NameFilter is a regular expression searched for in each directory name. Empty matches everything.
	NameFilter string
	// ExcludePatterns are doublestar globs matched against directory names.
	ExcludePatterns []string
}

// RepositoryDiscoverer lists git working copies directly under a root directory.
type RepositoryDiscoverer struct {
	fileSystem shared.FileSystem
}

// NewRepositoryDiscoverer constructs a discoverer. A nil filesystem falls back to the operating system.
func NewRepositoryDiscoverer(fileSystem shared.FileSystem) *RepositoryDiscoverer {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &RepositoryDiscoverer{fileSystem: fileSystem}
}

// DiscoverRepositories lists git working copies under root using the operating system filesystem.
func DiscoverRepositories(root string, options Options) ([]state.RepositoryHandle, error) {
	return NewRepositoryDiscoverer(nil).DiscoverRepositories(root, options)
}

// DiscoverRepositories returns a handle for every immediate subdirectory of root
// that passes the filters and contains a .git entry. Handles are sorted by name.
func (discoverer *RepositoryDiscoverer) DiscoverRepositories(root string, options Options) ([]state.RepositoryHandle, error) {
	nameFilter, filterError := compileNameFilter(options.NameFilter)
	if filterError != nil {
		return nil, filterError
	}
	for _, excludePattern := range options.ExcludePatterns {
		if !doublestar.ValidatePattern(excludePattern) {
			return nil, InvalidExcludePatternError{Pattern: excludePattern}
		}
	}

	absoluteRoot, absoluteError := discoverer.fileSystem.Abs(root)
	if absoluteError != nil {
		return nil, fmt.Errorf(resolveRootErrorTemplateConstant, root, absoluteError)
	}

	directoryEntries, readError := discoverer.fileSystem.ReadDir(absoluteRoot)
	if readError != nil {
		return nil, fmt.Errorf(readRootErrorTemplateConstant, absoluteRoot, readError)
	}

	handles := make([]state.RepositoryHandle, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		directoryName := directoryEntry.Name()
		directoryPath := filepath.Join(absoluteRoot, directoryName)
		if !discoverer.isDirectory(directoryPath) {
			continue
		}
		if nameFilter != nil && !nameFilter.MatchString(directoryName) {
			continue
		}
		if isExcluded(directoryName, options.ExcludePatterns) {
			continue
		}
		if !discoverer.hasGitMetadata(directoryPath) {
			continue
		}
		handles = append(handles, state.RepositoryHandle{Name: directoryName, Path: directoryPath})
	}

	sort.Slice(handles, func(leftIndex int, rightIndex int) bool {
		return handles[leftIndex].Name < handles[rightIndex].Name
	})
	return handles, nil
}

func compileNameFilter(pattern string) (*regexp.Regexp, error) {
	if len(pattern) == 0 {
		return nil, nil
	}
	compiled, compileError := regexp.Compile(pattern)
	if compileError != nil {
		return nil, InvalidNameFilterError{Pattern: pattern, Cause: compileError}
	}
	return compiled, nil
}

func isExcluded(directoryName string, excludePatterns []string) bool {
	for _, excludePattern := range excludePatterns {
		if doublestar.MatchUnvalidated(excludePattern, directoryName) {
			return true
		}
	}
	return false
}

func (discoverer *RepositoryDiscoverer) isDirectory(path string) bool {
	fileInfo, statError := discoverer.fileSystem.Stat(path)
	return statError == nil && fileInfo.IsDir()
}

func (discoverer *RepositoryDiscoverer) hasGitMetadata(path string) bool {
	_, statError := discoverer.fileSystem.Stat(filepath.Join(path, gitMetadataEntryNameConstant))
	return statError == nil
}
