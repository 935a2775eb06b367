package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	stepDoneLabelConstant       = "done"
	stepFailedLabelConstant     = "failed"
	stepStartedTemplateConstant = "%s... "
	lineTemplateConstant        = "%s\n"
	successColorConstant        = "2"
	failureColorConstant        = "1"
	warningColorConstant        = "3"
	headingColorConstant        = "6"
)

// StatusPrinter writes human-oriented progress to the console.
type StatusPrinter struct {
	writer       io.Writer
	headingStyle lipgloss.Style
	successStyle lipgloss.Style
	failureStyle lipgloss.Style
	warningStyle lipgloss.Style
}

// NewStatusPrinter builds a printer whose colour profile follows the writer; non-terminal writers get plain text.
func NewStatusPrinter(writer io.Writer) *StatusPrinter {
	if writer == nil {
		writer = io.Discard
	}
	renderer := lipgloss.NewRenderer(writer)

	return &StatusPrinter{
		writer:       writer,
		headingStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(headingColorConstant)),
		successStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(successColorConstant)),
		failureStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(failureColorConstant)),
		warningStyle: renderer.NewStyle().Foreground(lipgloss.Color(warningColorConstant)),
	}
}

// Heading prints a section title.
func (printer *StatusPrinter) Heading(text string) {
	printer.writeLine(printer.headingStyle.Render(text))
}

// Info prints an unstyled line.
func (printer *StatusPrinter) Info(text string) {
	printer.writeLine(text)
}

// Warning prints a highlighted line.
func (printer *StatusPrinter) Warning(text string) {
	printer.writeLine(printer.warningStyle.Render(text))
}

// Success prints a line in the success style.
func (printer *StatusPrinter) Success(text string) {
	printer.writeLine(printer.successStyle.Render(text))
}

// Failure prints a line in the failure style.
func (printer *StatusPrinter) Failure(text string) {
	printer.writeLine(printer.failureStyle.Render(text))
}

// StepStarted prints "label... " without a newline; StepDone or StepFailed completes the line.
func (printer *StatusPrinter) StepStarted(label string) {
	fmt.Fprintf(printer.writer, stepStartedTemplateConstant, label)
}

// StepDone completes a step line with "done".
func (printer *StatusPrinter) StepDone() {
	printer.writeLine(printer.successStyle.Render(stepDoneLabelConstant))
}

// StepFailed completes a step line with "failed".
func (printer *StatusPrinter) StepFailed() {
	printer.writeLine(printer.failureStyle.Render(stepFailedLabelConstant))
}

func (printer *StatusPrinter) writeLine(text string) {
	fmt.Fprintf(printer.writer, lineTemplateConstant, text)
}
