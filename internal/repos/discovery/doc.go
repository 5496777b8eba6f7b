// Package discovery builds the repository registry: the git working copies that
// live directly under a root directory.
package discovery
