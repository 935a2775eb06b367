// Package ui provides the interactive console surface of a mirror run.
//
// StatusPrinter renders headings and coloured done/failed step outcomes with
// lipgloss, IOPrompter reads answers (masking secrets on terminals), and
// ConsoleCommandEventLogger echoes external command activity to the console
// logger while the session log keeps the full record.
package ui
