// Package operations defines the git invocations a pipeline can fan out across
// repositories and the parsers that fold their output into repository state.
package operations
