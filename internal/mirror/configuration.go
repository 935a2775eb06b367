package mirror

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultProjectDescriptionConstant   = "Mirror of public GitHub repositories"
	defaultImportDirectoryConstant      = "github_repos"
	defaultCredentialFileConstant       = "~/.ghmirror-credentials"
	defaultCredentialUsernameConstant   = "oauth2"
	defaultRemoteNameConstant           = "origin"
	defaultHTTPTimeoutConstant          = 30 * time.Second
	defaultSessionLogDirectoryConstant  = "."
	defaultSessionLogLevelConstant      = "debug"
	defaultSessionLogFormatConstant     = "console"
	defaultSourceAPIBaseURLConstant     = "https://api.github.com/"
	missingRequiredFieldMessageConstant = "missing required field"
	missingFieldErrorTemplateConstant   = "%s: %s"
	trailingURLSeparatorConstant        = "/"
)

// Prompt labels, also used as field names in MissingFieldError.
const (
	SourceAccountPrompt         = "GitHub username"
	DestinationBaseURLPrompt    = "GitLab URL (e.g. https://gitlab.com)"
	DestinationRepositoryPrompt = "GitLab repository name"
	DestinationTokenPrompt      = "GitLab personal access token"
)

// ErrMissingRequiredField indicates an interactive value was empty after trimming.
var ErrMissingRequiredField = errors.New(missingRequiredFieldMessageConstant)

// MissingFieldError names the empty field.
type MissingFieldError struct {
	Field string
}

// Error describes the missing field.
func (missingError MissingFieldError) Error() string {
	return fmt.Sprintf(missingFieldErrorTemplateConstant, missingRequiredFieldMessageConstant, missingError.Field)
}

// Unwrap exposes ErrMissingRequiredField.
func (missingError MissingFieldError) Unwrap() error {
	return ErrMissingRequiredField
}

// SourceConfiguration configures the GitHub side.
type SourceConfiguration struct {
	APIBaseURL string `mapstructure:"api_base_url"`
	Account    string `mapstructure:"account"`
}

// DestinationConfiguration configures the GitLab side.
type DestinationConfiguration struct {
	BaseURL            string        `mapstructure:"base_url"`
	Repository         string        `mapstructure:"repository"`
	ProjectDescription string        `mapstructure:"project_description"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
}

// WorkspaceConfiguration configures where scratch clones and the working copy live.
type WorkspaceConfiguration struct {
	Root            string `mapstructure:"root"`
	ImportDirectory string `mapstructure:"import_directory"`
}

// SessionConfiguration configures the per-run log file.
type SessionConfiguration struct {
	LogDirectory string `mapstructure:"log_directory"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
}

// PublishConfiguration configures pushing to the destination.
type PublishConfiguration struct {
	CredentialFile     string `mapstructure:"credential_file"`
	CredentialUsername string `mapstructure:"credential_username"`
	RemoteName         string `mapstructure:"remote_name"`
}

// ReportConfiguration toggles the YAML run report.
type ReportConfiguration struct {
	Enabled bool `mapstructure:"enabled"`
}

// CommandConfiguration captures persisted configuration for mirror runs.
type CommandConfiguration struct {
	Source      SourceConfiguration      `mapstructure:"source"`
	Destination DestinationConfiguration `mapstructure:"destination"`
	Workspace   WorkspaceConfiguration   `mapstructure:"workspace"`
	Session     SessionConfiguration     `mapstructure:"session"`
	Publish     PublishConfiguration     `mapstructure:"publish"`
	Report      ReportConfiguration      `mapstructure:"report"`
}

// DefaultCommandConfiguration returns baseline configuration values for mirror runs.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Source: SourceConfiguration{APIBaseURL: defaultSourceAPIBaseURLConstant},
		Destination: DestinationConfiguration{
			ProjectDescription: defaultProjectDescriptionConstant,
			HTTPTimeout:        defaultHTTPTimeoutConstant,
		},
		Workspace: WorkspaceConfiguration{ImportDirectory: defaultImportDirectoryConstant},
		Session: SessionConfiguration{
			LogDirectory: defaultSessionLogDirectoryConstant,
			LogLevel:     defaultSessionLogLevelConstant,
			LogFormat:    defaultSessionLogFormatConstant,
		},
		Publish: PublishConfiguration{
			CredentialFile:     defaultCredentialFileConstant,
			CredentialUsername: defaultCredentialUsernameConstant,
			RemoteName:         defaultRemoteNameConstant,
		},
		Report: ReportConfiguration{Enabled: true},
	}
}

// Sanitize trims configured values and restores defaults for blank ones.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Source.APIBaseURL = valueOrDefault(configuration.Source.APIBaseURL, defaults.Source.APIBaseURL)
	sanitized.Source.Account = strings.TrimSpace(configuration.Source.Account)
	sanitized.Destination.BaseURL = strings.TrimSpace(configuration.Destination.BaseURL)
	sanitized.Destination.Repository = strings.TrimSpace(configuration.Destination.Repository)
	sanitized.Destination.ProjectDescription = valueOrDefault(configuration.Destination.ProjectDescription, defaults.Destination.ProjectDescription)
	if sanitized.Destination.HTTPTimeout <= 0 {
		sanitized.Destination.HTTPTimeout = defaults.Destination.HTTPTimeout
	}
	sanitized.Workspace.Root = strings.TrimSpace(configuration.Workspace.Root)
	sanitized.Workspace.ImportDirectory = strings.Trim(valueOrDefault(configuration.Workspace.ImportDirectory, defaults.Workspace.ImportDirectory), trailingURLSeparatorConstant)
	sanitized.Session.LogDirectory = valueOrDefault(configuration.Session.LogDirectory, defaults.Session.LogDirectory)
	sanitized.Session.LogLevel = valueOrDefault(configuration.Session.LogLevel, defaults.Session.LogLevel)
	sanitized.Session.LogFormat = valueOrDefault(configuration.Session.LogFormat, defaults.Session.LogFormat)
	sanitized.Publish.CredentialFile = valueOrDefault(configuration.Publish.CredentialFile, defaults.Publish.CredentialFile)
	sanitized.Publish.CredentialUsername = valueOrDefault(configuration.Publish.CredentialUsername, defaults.Publish.CredentialUsername)
	sanitized.Publish.RemoteName = valueOrDefault(configuration.Publish.RemoteName, defaults.Publish.RemoteName)

	return sanitized
}

// RunConfiguration holds the values collected for one run.
type RunConfiguration struct {
	SourceAccount         string
	DestinationBaseURL    string
	DestinationRepository string
	DestinationToken      string
}

// Validate reports the first empty field in prompt order.
func (configuration RunConfiguration) Validate() error {
	fields := []struct {
		label string
		value string
	}{
		{label: SourceAccountPrompt, value: configuration.SourceAccount},
		{label: DestinationBaseURLPrompt, value: configuration.DestinationBaseURL},
		{label: DestinationRepositoryPrompt, value: configuration.DestinationRepository},
		{label: DestinationTokenPrompt, value: configuration.DestinationToken},
	}
	for _, field := range fields {
		if len(strings.TrimSpace(field.value)) == 0 {
			return MissingFieldError{Field: field.label}
		}
	}
	return nil
}

// NormalizeDestinationURL removes exactly one trailing slash.
func NormalizeDestinationURL(destinationURL string) string {
	return strings.TrimSuffix(destinationURL, trailingURLSeparatorConstant)
}

// ConfigurationCollector gathers a RunConfiguration interactively.
type ConfigurationCollector struct {
	prompter Prompter
	defaults CommandConfiguration
}

// NewConfigurationCollector constructs a collector that offers configured values as defaults.
func NewConfigurationCollector(prompter Prompter, defaults CommandConfiguration) *ConfigurationCollector {
	return &ConfigurationCollector{prompter: prompter, defaults: defaults}
}

// Collect asks the four prompts in order, validates, and normalizes the destination URL.
func (collector *ConfigurationCollector) Collect() (RunConfiguration, error) {
	sourceAccount, accountError := collector.prompter.Ask(SourceAccountPrompt, collector.defaults.Source.Account)
	if accountError != nil {
		return RunConfiguration{}, accountError
	}
	destinationBaseURL, urlError := collector.prompter.Ask(DestinationBaseURLPrompt, collector.defaults.Destination.BaseURL)
	if urlError != nil {
		return RunConfiguration{}, urlError
	}
	destinationRepository, repositoryError := collector.prompter.Ask(DestinationRepositoryPrompt, collector.defaults.Destination.Repository)
	if repositoryError != nil {
		return RunConfiguration{}, repositoryError
	}
	destinationToken, tokenError := collector.prompter.AskSecret(DestinationTokenPrompt)
	if tokenError != nil {
		return RunConfiguration{}, tokenError
	}

	runConfiguration := RunConfiguration{
		SourceAccount:         strings.TrimSpace(sourceAccount),
		DestinationBaseURL:    strings.TrimSpace(destinationBaseURL),
		DestinationRepository: strings.TrimSpace(destinationRepository),
		DestinationToken:      strings.TrimSpace(destinationToken),
	}
	if validationError := runConfiguration.Validate(); validationError != nil {
		return RunConfiguration{}, validationError
	}

	runConfiguration.DestinationBaseURL = NormalizeDestinationURL(runConfiguration.DestinationBaseURL)
	return runConfiguration, nil
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
