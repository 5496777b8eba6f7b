package state

// Status summarizes how much a repository can be trusted to be in sync.
type Status string

// Derived statuses.
const (
	StatusOK       Status = "OK"
	StatusModerate Status = "MODERATE"
	StatusCritical Status = "CRITICAL"
)

// Classify derives the status of a repository from its accumulated state.
func Classify(repositoryState *RepositoryState) Status {
	if repositoryState.ReferenceKind == ReferenceKindUnknown {
		return StatusCritical
	}
	if repositoryState.CommitsBehind != nil && *repositoryState.CommitsBehind > 0 {
		return StatusCritical
	}
	if !KnownTrue(repositoryState.HasUpstream) || !KnownTrue(repositoryState.HasRemote) {
		return StatusModerate
	}
	if repositoryState.ReferenceKind != ReferenceKindBranch {
		return StatusModerate
	}
	if repositoryState.CommitsAhead == nil || repositoryState.CommitsBehind == nil {
		return StatusModerate
	}
	if *repositoryState.CommitsAhead == 0 && *repositoryState.CommitsBehind == 0 {
		return StatusOK
	}
	return StatusModerate
}
