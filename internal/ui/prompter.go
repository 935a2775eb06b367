package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const (
	promptTemplateConstant            = "%s: "
	promptWithDefaultTemplateConstant = "%s [%s]: "
	lineTerminatorConstant            = '\n'
	newlineConstant                   = "\n"
	affirmativeShortAnswerConstant    = "y"
	affirmativeLongAnswerConstant     = "yes"
)

// SecretReader reads one line without echoing it.
type SecretReader func() (string, error)

// IOPrompter reads operator answers from an io.Reader.
type IOPrompter struct {
	reader       *bufio.Reader
	writer       io.Writer
	secretReader SecretReader
}

// NewIOPrompter constructs a prompter. Secrets are read without echo when input is a terminal.
func NewIOPrompter(input io.Reader, output io.Writer) *IOPrompter {
	prompter := &IOPrompter{reader: bufio.NewReader(input), writer: output}

	if inputFile, isFile := input.(*os.File); isFile && IsTerminal(inputFile) {
		fileDescriptor := int(inputFile.Fd())
		prompter.secretReader = func() (string, error) {
			secret, readError := term.ReadPassword(fileDescriptor)
			return string(secret), readError
		}
	}

	return prompter
}

// WithSecretReader overrides how secrets are read.
func (prompter *IOPrompter) WithSecretReader(secretReader SecretReader) *IOPrompter {
	prompter.secretReader = secretReader
	return prompter
}

// IsTerminal reports whether the file is attached to a terminal.
func IsTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	fileDescriptor := file.Fd()
	return isatty.IsTerminal(fileDescriptor) || isatty.IsCygwinTerminal(fileDescriptor)
}

// Ask prints the prompt, showing defaultValue when present, and returns the trimmed answer or the default for an empty answer.
func (prompter *IOPrompter) Ask(prompt string, defaultValue string) (string, error) {
	trimmedDefault := strings.TrimSpace(defaultValue)
	formattedPrompt := fmt.Sprintf(promptTemplateConstant, prompt)
	if len(trimmedDefault) > 0 {
		formattedPrompt = fmt.Sprintf(promptWithDefaultTemplateConstant, prompt, trimmedDefault)
	}
	if writeError := prompter.write(formattedPrompt); writeError != nil {
		return "", writeError
	}

	answer, readError := prompter.readLine()
	if readError != nil {
		return "", readError
	}
	if len(answer) == 0 {
		return trimmedDefault, nil
	}
	return answer, nil
}

// AskSecret prints the prompt and reads an answer without echo when possible.
func (prompter *IOPrompter) AskSecret(prompt string) (string, error) {
	if writeError := prompter.write(fmt.Sprintf(promptTemplateConstant, prompt)); writeError != nil {
		return "", writeError
	}

	if prompter.secretReader == nil {
		return prompter.readLine()
	}

	secret, readError := prompter.secretReader()
	if writeError := prompter.write(newlineConstant); writeError != nil {
		return "", writeError
	}
	if readError != nil {
		return "", readError
	}
	return strings.TrimSpace(secret), nil
}

// Confirm writes the prompt and interprets affirmative responses (y/yes).
func (prompter *IOPrompter) Confirm(prompt string) (bool, error) {
	if writeError := prompter.write(prompt); writeError != nil {
		return false, writeError
	}

	response, readError := prompter.readLine()
	if readError != nil {
		return false, readError
	}

	switch strings.ToLower(response) {
	case affirmativeShortAnswerConstant, affirmativeLongAnswerConstant:
		return true, nil
	default:
		return false, nil
	}
}

func (prompter *IOPrompter) write(text string) error {
	if prompter.writer == nil {
		return nil
	}
	_, writeError := io.WriteString(prompter.writer, text)
	return writeError
}

func (prompter *IOPrompter) readLine() (string, error) {
	response, readError := prompter.reader.ReadString(lineTerminatorConstant)
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	return strings.TrimSpace(response), nil
}
