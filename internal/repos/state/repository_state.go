package state

import "sort"

const (
	referenceKindUnknownConstant  = "unknown"
	referenceKindDetachedConstant = "detached"
	referenceKindBranchConstant   = "branch"
	referenceKindTagConstant      = "tag"
	referenceKindCommitConstant   = "commit"
	shortObjectIDLengthConstant   = 7
)

// RepositoryHandle identifies a discovered working copy.
type RepositoryHandle struct {
	Name string
	Path string
}

// ReferenceKind classifies the checked-out reference.
type ReferenceKind int

// Reference kinds. ReferenceKindUnknown is the initial value and marks a failure to determine HEAD.
const (
	ReferenceKindUnknown ReferenceKind = iota
	ReferenceKindDetached
	ReferenceKindBranch
	ReferenceKindTag
	ReferenceKindCommit
)

var referenceKindLabels = map[ReferenceKind]string{
	ReferenceKindUnknown:  referenceKindUnknownConstant,
	ReferenceKindDetached: referenceKindDetachedConstant,
	ReferenceKindBranch:   referenceKindBranchConstant,
	ReferenceKindTag:      referenceKindTagConstant,
	ReferenceKindCommit:   referenceKindCommitConstant,
}

// String returns the lowercase label of the kind.
func (kind ReferenceKind) String() string {
	label, known := referenceKindLabels[kind]
	if !known {
		return referenceKindUnknownConstant
	}
	return label
}

// RepositoryState accumulates what pipeline operations learned about one repository.
// Pointer fields are nil until an operation determines them.
type RepositoryState struct {
	Handle RepositoryHandle

	Reference     *string
	ReferenceKind ReferenceKind
	ObjectID      string
	Upstream      *string

	HasRemote   *bool
	HasUpstream *bool
	IsClean     bool

	CommitsAhead  *int
	CommitsBehind *int

	StaleBranches      []string
	StaleBranchesKnown bool

	DefaultBranch    *string
	LatestReleaseTag *string

	CustomOutput   *string
	CustomError    *string
	CustomExitCode *int

	completedStages map[Stage]struct{}
}

// NewRepositoryState creates the initial state for a discovered repository.
func NewRepositoryState(handle RepositoryHandle) *RepositoryState {
	return &RepositoryState{Handle: handle, completedStages: make(map[Stage]struct{})}
}

// NewRepositoryStates creates one state per handle, preserving order.
func NewRepositoryStates(handles []RepositoryHandle) []*RepositoryState {
	repositoryStates := make([]*RepositoryState, 0, len(handles))
	for handleIndex := range handles {
		repositoryStates = append(repositoryStates, NewRepositoryState(handles[handleIndex]))
	}
	return repositoryStates
}

// Name returns the repository directory name.
func (repositoryState *RepositoryState) Name() string {
	return repositoryState.Handle.Name
}

// Path returns the absolute repository path.
func (repositoryState *RepositoryState) Path() string {
	return repositoryState.Handle.Path
}

// ShortObjectID returns the abbreviated commit id, or an empty string when unknown.
func (repositoryState *RepositoryState) ShortObjectID() string {
	if len(repositoryState.ObjectID) <= shortObjectIDLengthConstant {
		return repositoryState.ObjectID
	}
	return repositoryState.ObjectID[:shortObjectIDLengthConstant]
}

// MarkStageCompleted records that an operation providing the stage has run.
func (repositoryState *RepositoryState) MarkStageCompleted(stage Stage) {
	if repositoryState.completedStages == nil {
		repositoryState.completedStages = make(map[Stage]struct{})
	}
	repositoryState.completedStages[stage] = struct{}{}
}

// CompletedStages lists the recorded stages in lexical order.
func (repositoryState *RepositoryState) CompletedStages() []Stage {
	completed := make([]Stage, 0, len(repositoryState.completedStages))
	for stage := range repositoryState.completedStages {
		completed = append(completed, stage)
	}
	sort.Slice(completed, func(leftIndex int, rightIndex int) bool {
		return completed[leftIndex] < completed[rightIndex]
	})
	return completed
}

// KnownTrue reports whether an optional boolean is set and true.
func KnownTrue(value *bool) bool {
	return value != nil && *value
}

// KnownFalse reports whether an optional boolean is set and false.
func KnownFalse(value *bool) bool {
	return value != nil && !*value
}

// BoolPointer returns a pointer to a copy of value.
func BoolPointer(value bool) *bool {
	return &value
}

// IntPointer returns a pointer to a copy of value.
func IntPointer(value int) *int {
	return &value
}

// StringPointer returns a pointer to a copy of value.
func StringPointer(value string) *string {
	return &value
}
