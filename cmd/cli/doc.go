// Package cli builds the ghmirror command-line interface: the Cobra root
// command, configuration loading through Viper with embedded defaults, and
// the console logger handed to the mirror workflow.
package cli
