package state

// Stage names a piece of repository state that becomes available once an
// operation providing it has run. Operations declare the stages they require so
// a pipeline can be checked for ordering mistakes before anything is spawned.
type Stage string

// Pipeline stages.
const (
	StageRemoteProbed         Stage = "remote-probed"
	StageStatusProbed         Stage = "status-probed"
	StageDefaultBranchProbed  Stage = "default-branch-probed"
	StageLatestTagProbed      Stage = "latest-tag-probed"
	StageStaleBranchesScanned Stage = "stale-branches-scanned"
	StageCustomCommandRun     Stage = "custom-command-recorded"
)
