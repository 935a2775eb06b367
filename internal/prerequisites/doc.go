// Package prerequisites verifies that the executables a mirror run shells out
// to are installed and, with the operator's consent, installs missing ones
// through the first package manager found on PATH.
package prerequisites
