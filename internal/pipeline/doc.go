// Package pipeline assembles ordered operation lists for each CLI action and runs
// them across repositories, starting every eligible process before collecting any.
package pipeline
