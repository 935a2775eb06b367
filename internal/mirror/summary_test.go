package mirror_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/ghmirror/internal/filesystem"
	"github.com/temirov/ghmirror/internal/mirror"
)

func TestReportPathReplacesLogExtension(testInstance *testing.T) {
	require.Equal(testInstance, "/var/log/ghmirror_20260304_150607.summary.yaml", mirror.ReportPath("/var/log/ghmirror_20260304_150607.log"))
	require.Equal(testInstance, "run.summary.yaml", mirror.ReportPath("run"))
}

func TestNewRunSummaryCountsOutcomes(testInstance *testing.T) {
	summary := mirror.NewRunSummary(testRunConfiguration(), []mirror.ImportResult{
		{RepositoryName: "blog", FailedStage: mirror.ImportStageClone, Error: errTestFailure},
		{RepositoryName: "site", Succeeded: true},
	}, mirror.PublishResult{Succeeded: true, Branch: "main", Attempts: 1})

	require.Equal(testInstance, 2, summary.Selected)
	require.Equal(testInstance, 1, summary.Succeeded)
	require.Equal(testInstance, []string{"blog"}, summary.FailedRepositories)
	require.Equal(testInstance, "Migration finished: 1 out of 2 repositories imported successfully", summary.Headline())
}

func TestPrintSummaryReportsOutcome(testInstance *testing.T) {
	testCases := []struct {
		name          string
		summary       mirror.RunSummary
		expectedLines []string
	}{
		{
			name: "published",
			summary: mirror.RunSummary{
				DestinationRepository: testDestinationRepositoryConstant,
				Selected:              2,
				Succeeded:             2,
				Published:             true,
				PublishedBranch:       "main",
				CommitCount:           3,
				LogFile:               "ghmirror_20260304_150607.log",
			},
			expectedLines: []string{
				"Migration finished: 2 out of 2 repositories imported successfully",
				"Pushed main to mirror",
				"Working copy holds 3 commits",
				"Details: ghmirror_20260304_150607.log",
			},
		},
		{
			name: "push_failed",
			summary: mirror.RunSummary{
				DestinationRepository: testDestinationRepositoryConstant,
				Selected:              2,
				Succeeded:             1,
				FailedRepositories:    []string{"tools"},
				WorkingCopy:           "/tmp/ghmirror-1/mirror",
			},
			expectedLines: []string{
				"Migration finished: 1 out of 2 repositories imported successfully",
				"Failed repositories: tools",
				"Push to GitLab failed. Push manually from /tmp/ghmirror-1/mirror with: git push -u origin main",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			reporter := &recordingReporter{}
			mirror.PrintSummary(reporter, testCase.summary, "origin")
			require.Equal(subTest, testCase.expectedLines, reporter.lines)
		})
	}
}

func TestReportWriterPersistsYAML(testInstance *testing.T) {
	reportPath := filepath.Join(testInstance.TempDir(), "run.summary.yaml")
	summary := mirror.NewRunSummary(testRunConfiguration(), []mirror.ImportResult{
		{RepositoryName: "site", Succeeded: true},
		{RepositoryName: "tools", FailedStage: mirror.ImportStageCopy, Error: errTestFailure},
	}, mirror.PublishResult{Succeeded: true, Branch: "master", Attempts: 2})

	require.NoError(testInstance, mirror.NewReportWriter(filesystem.OSFileSystem{}).Write(reportPath, summary))

	content, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)
	require.NotContains(testInstance, string(content), testTokenConstant)

	var decoded map[string]any
	require.NoError(testInstance, yaml.Unmarshal(content, &decoded))
	require.Equal(testInstance, testSourceAccountConstant, decoded["source_account"])
	require.Equal(testInstance, "master", decoded["published_branch"])
	require.Equal(testInstance, []any{"tools"}, decoded["failed_repositories"])

	imports, ok := decoded["imports"].([]any)
	require.True(testInstance, ok)
	require.Len(testInstance, imports, 2)
	require.Equal(testInstance, "copy", imports[1].(map[string]any)["failed_stage"])
}
