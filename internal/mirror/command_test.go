package mirror_test

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/ghmirror/internal/mirror"
	"github.com/temirov/ghmirror/internal/prerequisites"
)

type recordingServiceRunner struct {
	runs int
}

func (runner *recordingServiceRunner) Run(context.Context) (mirror.RunSummary, error) {
	runner.runs++
	return mirror.RunSummary{}, nil
}

func TestCommandBuilderStopsWhenToolsMissing(testInstance *testing.T) {
	output := &bytes.Buffer{}
	serviceRunner := &recordingServiceRunner{}
	builder := mirror.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		Input:          strings.NewReader(""),
		Output:         output,
		ExecutableLocator: func(string) (string, error) {
			return "", exec.ErrNotFound
		},
		ServiceProvider: func(mirror.ServiceDependencies) (mirror.ServiceRunner, error) {
			return serviceRunner, nil
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	command.SetContext(context.Background())

	executeError := command.Execute()

	require.True(testInstance, errors.Is(executeError, prerequisites.ErrDependenciesMissing))
	require.Contains(testInstance, output.String(), "Missing required tools: git, rsync")
	require.Zero(testInstance, serviceRunner.runs)
}

func TestCommandBuilderRunsServiceAfterSessionOpens(testInstance *testing.T) {
	logDirectory := testInstance.TempDir()
	serviceRunner := &recordingServiceRunner{}
	var capturedDependencies mirror.ServiceDependencies
	builder := mirror.CommandBuilder{
		ConfigurationProvider: func() mirror.CommandConfiguration {
			configuration := mirror.DefaultCommandConfiguration()
			configuration.Session.LogDirectory = logDirectory
			return configuration
		},
		Input:  strings.NewReader(""),
		Output: &bytes.Buffer{},
		ExecutableLocator: func(name string) (string, error) {
			return "/usr/bin/" + name, nil
		},
		ServiceProvider: func(dependencies mirror.ServiceDependencies) (mirror.ServiceRunner, error) {
			capturedDependencies = dependencies
			return serviceRunner, nil
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	command.SetContext(context.Background())

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, 1, serviceRunner.runs)
	require.True(testInstance, strings.HasPrefix(capturedDependencies.LogFilePath, logDirectory))
	require.FileExists(testInstance, capturedDependencies.LogFilePath)
	require.NotNil(testInstance, capturedDependencies.SourceLister)
	require.NotNil(testInstance, capturedDependencies.DestinationClientFactory)
}
