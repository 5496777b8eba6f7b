// Package report renders repository states as a colored status table, stale
// branch listings, custom command output, or YAML and JSON documents.
package report
