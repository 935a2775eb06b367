package mirror

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	fallbackBranchNameConstant           = "master"
	publishStepTemplateConstant          = "Pushing to %s"
	pushExhaustedMessageConstant         = "all push attempts failed"
	configureHelperErrorTemplateConstant = "configure credential helper: %w"
	logMessagePushAttemptConstant        = "Push attempt"
	logMessagePushSucceededConstant      = "Push succeeded"
	logMessagePushFailedConstant         = "Push attempt failed"
	logMessagePublishFailedConstant      = "All push attempts failed"
	logFieldBranchConstant               = "branch"
	logFieldForceConstant                = "force"
	logFieldAttemptConstant              = "attempt"
)

// ErrPushAttemptsExhausted indicates every push variant failed.
var ErrPushAttemptsExhausted = errors.New(pushExhaustedMessageConstant)

// PushAttempt is one entry of the push fallback chain.
type PushAttempt struct {
	Branch string
	Force  bool
}

// PushSequence returns the push fallback chain: main, master, force main, force master.
func PushSequence() []PushAttempt {
	return []PushAttempt{
		{Branch: primaryBranchNameConstant},
		{Branch: fallbackBranchNameConstant},
		{Branch: primaryBranchNameConstant, Force: true},
		{Branch: fallbackBranchNameConstant, Force: true},
	}
}

// PublishResult records how the working copy was published.
type PublishResult struct {
	Succeeded bool
	Branch    string
	Forced    bool
	Attempts  int
}

// PublisherDependencies wires collaborators for Publisher.
type PublisherDependencies struct {
	Logger            *zap.Logger
	Reporter          StatusReporter
	RepositoryManager RepositoryManager
	CredentialStore   *CredentialStore
	RemoteName        string
}

// Publisher pushes the destination working copy with a scoped credential file.
type Publisher struct {
	logger            *zap.Logger
	reporter          StatusReporter
	repositoryManager RepositoryManager
	credentialStore   *CredentialStore
	remoteName        string
	sequence          []PushAttempt
}

// NewPublisher constructs a Publisher.
func NewPublisher(dependencies PublisherDependencies) (*Publisher, error) {
	if dependencies.RepositoryManager == nil {
		return nil, errRepositoryManagerMissing
	}
	if dependencies.CredentialStore == nil {
		return nil, errCredentialStoreMissing
	}

	publisher := &Publisher{
		logger:            dependencies.Logger,
		reporter:          dependencies.Reporter,
		repositoryManager: dependencies.RepositoryManager,
		credentialStore:   dependencies.CredentialStore,
		remoteName:        dependencies.RemoteName,
		sequence:          PushSequence(),
	}
	if publisher.logger == nil {
		publisher.logger = zap.NewNop()
	}
	if len(publisher.remoteName) == 0 {
		publisher.remoteName = defaultRemoteNameConstant
	}

	return publisher, nil
}

// Publish writes the credential file, configures the working copy to read it, and walks the push chain
// until one attempt succeeds. The credential file is removed before Publish returns.
func (publisher *Publisher) Publish(executionContext context.Context, workingCopyPath string, configuration RunConfiguration) (result PublishResult, publishError error) {
	publisher.reporter.StepStarted(fmt.Sprintf(publishStepTemplateConstant, configuration.DestinationRepository))
	defer func() {
		if publishError != nil || !result.Succeeded {
			publisher.reporter.StepFailed()
			return
		}
		publisher.reporter.StepDone()
	}()

	release, acquireError := publisher.credentialStore.Acquire(configuration.DestinationBaseURL, configuration.DestinationToken)
	if acquireError != nil {
		return PublishResult{}, acquireError
	}
	defer func() {
		if releaseError := release(); releaseError != nil {
			publisher.logger.Error(logMessageCredentialReleaseFailedConstant, zap.Error(releaseError))
			publishError = errors.Join(publishError, releaseError)
		}
	}()

	if configureError := publisher.repositoryManager.ConfigureCredentialStore(executionContext, workingCopyPath, publisher.credentialStore.Path()); configureError != nil {
		return PublishResult{}, fmt.Errorf(configureHelperErrorTemplateConstant, configureError)
	}

	var attemptErrors []error
	for attemptIndex, attempt := range publisher.sequence {
		result.Attempts = attemptIndex + 1
		attemptFields := []zap.Field{
			zap.Int(logFieldAttemptConstant, result.Attempts),
			zap.String(logFieldBranchConstant, attempt.Branch),
			zap.Bool(logFieldForceConstant, attempt.Force),
		}
		publisher.logger.Info(logMessagePushAttemptConstant, attemptFields...)

		pushError := publisher.repositoryManager.Push(executionContext, workingCopyPath, publisher.remoteName, attempt.Branch, attempt.Force)
		if pushError == nil {
			result.Succeeded = true
			result.Branch = attempt.Branch
			result.Forced = attempt.Force
			publisher.logger.Info(logMessagePushSucceededConstant, attemptFields...)
			return result, nil
		}

		publisher.logger.Warn(logMessagePushFailedConstant, append(attemptFields, zap.Error(pushError))...)
		attemptErrors = append(attemptErrors, pushError)
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}
	}

	publisher.logger.Error(logMessagePublishFailedConstant, zap.Int(logFieldAttemptConstant, result.Attempts))
	return result, errors.Join(append([]error{ErrPushAttemptsExhausted}, attemptErrors...)...)
}
