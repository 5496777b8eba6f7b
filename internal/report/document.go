package report

import (
	"github.com/temirov/repostates/internal/repos/state"
)

// Document is the serializable snapshot of a pipeline run.
type Document struct {
	Repositories []RepositoryDocument `json:"repositories" yaml:"repositories"`
}

// RepositoryDocument captures the final state of one repository.
type RepositoryDocument struct {
	Name             string          `json:"name" yaml:"name"`
	Path             string          `json:"path" yaml:"path"`
	Status           state.Status    `json:"status" yaml:"status"`
	ReferenceKind    string          `json:"reference_kind" yaml:"reference_kind"`
	Reference        *string         `json:"reference,omitempty" yaml:"reference,omitempty"`
	Upstream         *string         `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	HasRemote        *bool           `json:"has_remote,omitempty" yaml:"has_remote,omitempty"`
	HasUpstream      *bool           `json:"has_upstream,omitempty" yaml:"has_upstream,omitempty"`
	Clean            bool            `json:"clean" yaml:"clean"`
	CommitsAhead     *int            `json:"commits_ahead,omitempty" yaml:"commits_ahead,omitempty"`
	CommitsBehind    *int            `json:"commits_behind,omitempty" yaml:"commits_behind,omitempty"`
	StaleBranches    []string        `json:"stale_branches,omitempty" yaml:"stale_branches,omitempty"`
	DefaultBranch    *string         `json:"default_branch,omitempty" yaml:"default_branch,omitempty"`
	LatestReleaseTag *string         `json:"latest_release_tag,omitempty" yaml:"latest_release_tag,omitempty"`
	CustomCommand    *CustomDocument `json:"custom_command,omitempty" yaml:"custom_command,omitempty"`
	Stages           []state.Stage   `json:"stages,omitempty" yaml:"stages,omitempty"`
}

// CustomDocument captures the recorded outcome of a custom command.
type CustomDocument struct {
	ExitCode       int    `json:"exit_code" yaml:"exit_code"`
	StandardOutput string `json:"stdout" yaml:"stdout"`
	StandardError  string `json:"stderr" yaml:"stderr"`
}

// NewDocument builds a document with repositories sorted by name.
func NewDocument(repositoryStates []*state.RepositoryState) Document {
	sorted := SortByName(repositoryStates)
	repositories := make([]RepositoryDocument, 0, len(sorted))
	for _, repositoryState := range sorted {
		repositoryDocument := RepositoryDocument{
			Name:             repositoryState.Name(),
			Path:             repositoryState.Path(),
			Status:           state.Classify(repositoryState),
			ReferenceKind:    repositoryState.ReferenceKind.String(),
			Reference:        repositoryState.Reference,
			Upstream:         repositoryState.Upstream,
			HasRemote:        repositoryState.HasRemote,
			HasUpstream:      repositoryState.HasUpstream,
			Clean:            repositoryState.IsClean,
			CommitsAhead:     repositoryState.CommitsAhead,
			CommitsBehind:    repositoryState.CommitsBehind,
			DefaultBranch:    repositoryState.DefaultBranch,
			LatestReleaseTag: repositoryState.LatestReleaseTag,
			Stages:           repositoryState.CompletedStages(),
		}
		if repositoryState.StaleBranchesKnown {
			repositoryDocument.StaleBranches = append([]string{}, repositoryState.StaleBranches...)
		}
		if repositoryState.CustomExitCode != nil {
			repositoryDocument.CustomCommand = &CustomDocument{
				ExitCode:       *repositoryState.CustomExitCode,
				StandardOutput: optionalStreamContent(repositoryState.CustomOutput),
				StandardError:  optionalStreamContent(repositoryState.CustomError),
			}
		}
		repositories = append(repositories, repositoryDocument)
	}
	return Document{Repositories: repositories}
}

func optionalStreamContent(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
