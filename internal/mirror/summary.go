package mirror

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ghmirror/internal/filesystem"
)

const (
	logFileExtensionConstant            = ".log"
	reportFileSuffixConstant            = ".summary.yaml"
	reportFilePermissionsConstant       = 0o644
	summaryHeadlineTemplateConstant     = "Migration finished: %d out of %d repositories imported successfully"
	failedRepositoriesTemplateConstant  = "Failed repositories: %s"
	publishedTemplateConstant           = "Pushed %s to %s"
	forcePublishedTemplateConstant      = "Force pushed %s to %s"
	publishFailedMessageConstant        = "Push to GitLab failed. Push manually from %s with: git push -u %s main"
	commitCountTemplateConstant         = "Working copy holds %d commits"
	detailsTemplateConstant             = "Details: %s"
	reportWrittenTemplateConstant       = "Report: %s"
	failedRepositoriesSeparatorConstant = ", "
	reportMarshalErrorTemplateConstant  = "encode run report: %w"
	reportWriteErrorTemplateConstant    = "write run report %s: %w"
)

// RunSummary aggregates the outcome of a run.
type RunSummary struct {
	SourceAccount         string         `yaml:"source_account"`
	DestinationRepository string         `yaml:"destination_repository"`
	DestinationURL        string         `yaml:"destination_url"`
	Selected              int            `yaml:"selected"`
	Succeeded             int            `yaml:"succeeded"`
	FailedRepositories    []string       `yaml:"failed_repositories,omitempty"`
	Imports               []ImportResult `yaml:"imports"`
	Published             bool           `yaml:"published"`
	PublishedBranch       string         `yaml:"published_branch,omitempty"`
	ForcedPush            bool           `yaml:"forced_push"`
	PushAttempts          int            `yaml:"push_attempts"`
	CommitCount           int            `yaml:"commit_count"`
	WorkingCopy           string         `yaml:"working_copy"`
	LogFile               string         `yaml:"log_file,omitempty"`
	StartedAt             time.Time      `yaml:"started_at"`
	FinishedAt            time.Time      `yaml:"finished_at"`
}

// NewRunSummary folds import and publish results into a summary.
func NewRunSummary(configuration RunConfiguration, imports []ImportResult, publishResult PublishResult) RunSummary {
	summary := RunSummary{
		SourceAccount:         configuration.SourceAccount,
		DestinationRepository: configuration.DestinationRepository,
		DestinationURL:        configuration.DestinationBaseURL,
		Selected:              len(imports),
		Imports:               append([]ImportResult{}, imports...),
		Published:             publishResult.Succeeded,
		PublishedBranch:       publishResult.Branch,
		ForcedPush:            publishResult.Forced,
		PushAttempts:          publishResult.Attempts,
	}
	for _, importResult := range imports {
		if importResult.Succeeded {
			summary.Succeeded++
			continue
		}
		summary.FailedRepositories = append(summary.FailedRepositories, importResult.RepositoryName)
	}
	return summary
}

// Headline renders the "X out of Y" line.
func (summary RunSummary) Headline() string {
	return fmt.Sprintf(summaryHeadlineTemplateConstant, summary.Succeeded, summary.Selected)
}

// PrintSummary writes the console summary.
func PrintSummary(reporter StatusReporter, summary RunSummary, remoteName string) {
	if summary.Succeeded == summary.Selected {
		reporter.Success(summary.Headline())
	} else {
		reporter.Warning(summary.Headline())
	}
	if len(summary.FailedRepositories) > 0 {
		reporter.Warning(fmt.Sprintf(failedRepositoriesTemplateConstant, strings.Join(summary.FailedRepositories, failedRepositoriesSeparatorConstant)))
	}

	switch {
	case summary.Published && summary.ForcedPush:
		reporter.Warning(fmt.Sprintf(forcePublishedTemplateConstant, summary.PublishedBranch, summary.DestinationRepository))
	case summary.Published:
		reporter.Success(fmt.Sprintf(publishedTemplateConstant, summary.PublishedBranch, summary.DestinationRepository))
	default:
		reporter.Failure(fmt.Sprintf(publishFailedMessageConstant, summary.WorkingCopy, remoteName))
	}

	if summary.CommitCount > 0 {
		reporter.Info(fmt.Sprintf(commitCountTemplateConstant, summary.CommitCount))
	}
	if len(summary.LogFile) > 0 {
		reporter.Info(fmt.Sprintf(detailsTemplateConstant, summary.LogFile))
	}
}

// ReportPath derives <log file without .log>.summary.yaml.
func ReportPath(logFilePath string) string {
	return strings.TrimSuffix(logFilePath, logFileExtensionConstant) + reportFileSuffixConstant
}

// ReportWriter persists run summaries as YAML.
type ReportWriter struct {
	fileSystem filesystem.FileSystem
}

// NewReportWriter constructs a ReportWriter.
func NewReportWriter(fileSystem filesystem.FileSystem) *ReportWriter {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &ReportWriter{fileSystem: fileSystem}
}

// Write encodes summary to reportPath.
func (writer *ReportWriter) Write(reportPath string, summary RunSummary) error {
	encoded, marshalError := yaml.Marshal(summary)
	if marshalError != nil {
		return fmt.Errorf(reportMarshalErrorTemplateConstant, marshalError)
	}
	if writeError := writer.fileSystem.WriteFile(reportPath, encoded, reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, reportPath, writeError)
	}
	return nil
}
