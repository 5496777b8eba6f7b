// Package cli constructs the repostates command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// around the repository discovery, pipeline, and reporting packages.
package cli
