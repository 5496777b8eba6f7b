// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec behind CommandRunner, whose Start method launches a process
// without waiting so callers can fan a command out across many repositories
// before collecting any result. ShellExecutor layers zap logging and lifecycle
// observers on top of a runner.
package execshell
