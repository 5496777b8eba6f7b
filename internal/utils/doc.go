// Package utils hosts the ambient plumbing shared by the CLI: zap logger
// construction, viper-backed configuration loading, and flag usage helpers.
package utils
