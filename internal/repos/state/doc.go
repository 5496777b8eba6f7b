// Package state defines the per-repository record that pipeline operations
// mutate and reporting reads, along with the derived status classification.
package state
