package operations

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	latestReleaseTagProbeNameConstant     = "latest-release-tag-probe"
	latestReleaseTagProbeMessageConstant  = "Looking up latest release tags..."
	gitLsRemoteSubcommandConstant         = "ls-remote"
	gitSortByVersionFlagConstant          = "--sort=-v:refname"
	tagReferencePrefixConstant            = "refs/tags/"
	peeledTagSuffixConstant               = "^{}"
	semanticVersionPrefixConstant         = "v"
	semanticVersionCoreSeparatorConstant  = "."
	semanticVersionCoreFieldCountConstant = 3
	invalidReleaseVersionMessageConstant  = "invalid release version"
	releaseVersionErrorTemplateConstant   = "%w: %q"
)

// ErrInvalidReleaseVersion indicates a tag that is not a full semantic version.
var ErrInvalidReleaseVersion = errors.New(invalidReleaseVersionMessageConstant)

// ReleaseVersion is a parsed semantic version tag.
type ReleaseVersion struct {
	Tag        string
	Canonical  string
	Prerelease string
}

// IsPrerelease reports whether the version carries a pre-release suffix.
func (version ReleaseVersion) IsPrerelease() bool {
	return len(version.Prerelease) > 0
}

// ParseReleaseVersion parses MAJOR.MINOR.PATCH tags with an optional v prefix.
func ParseReleaseVersion(tag string) (ReleaseVersion, error) {
	candidate := strings.TrimSpace(tag)
	if !strings.HasPrefix(candidate, semanticVersionPrefixConstant) {
		candidate = semanticVersionPrefixConstant + candidate
	}
	if !semver.IsValid(candidate) {
		return ReleaseVersion{}, fmt.Errorf(releaseVersionErrorTemplateConstant, ErrInvalidReleaseVersion, tag)
	}

	prerelease := semver.Prerelease(candidate)
	build := semver.Build(candidate)
	core := strings.TrimPrefix(candidate, semanticVersionPrefixConstant)
	core = strings.TrimSuffix(strings.TrimSuffix(core, build), prerelease)
	if len(strings.Split(core, semanticVersionCoreSeparatorConstant)) != semanticVersionCoreFieldCountConstant {
		return ReleaseVersion{}, fmt.Errorf(releaseVersionErrorTemplateConstant, ErrInvalidReleaseVersion, tag)
	}

	return ReleaseVersion{
		Tag:        tag,
		Canonical:  semver.Canonical(candidate),
		Prerelease: prerelease,
	}, nil
}

// SelectLatestReleaseTag returns the first stable release tag listed in
// ls-remote output. The output is expected to be sorted newest first.
func SelectLatestReleaseTag(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		reference := fields[len(fields)-1]
		if strings.HasSuffix(reference, peeledTagSuffixConstant) {
			continue
		}
		prefixIndex := strings.Index(reference, tagReferencePrefixConstant)
		if prefixIndex < 0 {
			continue
		}
		tagName := reference[prefixIndex+len(tagReferencePrefixConstant):]
		version, parseError := ParseReleaseVersion(tagName)
		if parseError != nil || version.IsPrerelease() {
			continue
		}
		return tagName, true
	}
	return "", false
}

// LatestReleaseTagProbe lists origin tags and records the newest stable release.
type LatestReleaseTagProbe struct{}

// Name identifies the operation.
func (LatestReleaseTagProbe) Name() string { return latestReleaseTagProbeNameConstant }

// Message returns the progress label.
func (LatestReleaseTagProbe) Message() string { return latestReleaseTagProbeMessageConstant }

// Requires returns no stages.
func (LatestReleaseTagProbe) Requires() []state.Stage { return nil }

// Provides marks the latest release tag as probed.
func (LatestReleaseTagProbe) Provides() []state.Stage {
	return []state.Stage{state.StageLatestTagProbed}
}

// IsRelevant applies to every repository.
func (LatestReleaseTagProbe) IsRelevant(repositoryState *state.RepositoryState) bool {
	return alwaysRelevant(repositoryState)
}

// BuildCommand returns git ls-remote --tags --sort=-v:refname origin.
func (LatestReleaseTagProbe) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	return buildGitCommand(repositoryState, gitLsRemoteSubcommandConstant, gitTagsFlagConstant, gitSortByVersionFlagConstant, gitOriginRemoteConstant)
}

// ApplyResult records the newest stable tag, or clears the field when none qualifies.
func (LatestReleaseTagProbe) ApplyResult(repositoryState *state.RepositoryState, result execshell.ExecutionResult) {
	repositoryState.LatestReleaseTag = nil
	if !succeeded(result) {
		return
	}
	if tagName, found := SelectLatestReleaseTag(result.StandardOutput); found {
		repositoryState.LatestReleaseTag = state.StringPointer(tagName)
	}
}
