// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions ghmirror uses to run
// git, rsync, and package managers in a testable manner.
package execshell
