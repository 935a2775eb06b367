package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	defaultPushRemoteLabelConstant          = "origin"
)

const (
	gitCloneSubcommandNameConstant  = "clone"
	gitInitSubcommandNameConstant   = "init"
	gitAddSubcommandNameConstant    = "add"
	gitCommitSubcommandNameConstant = "commit"
	gitPushSubcommandNameConstant   = "push"
	gitMessageFlagConstant          = "-m"
	gitForceFlagConstant            = "--force"
	gitFlagPrefixConstant           = "-"
)

const (
	gitCloneStartTemplateConstant                   = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant                 = "Cloned %s into %s"
	gitCloneFailureTemplateConstant                 = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant        = "Unable to clone %s into %s: %s"
	gitInitStartTemplateConstant                    = "Initializing repository in %s"
	gitInitSuccessTemplateConstant                  = "Initialized repository in %s"
	gitInitFailureTemplateConstant                  = "Failed to initialize repository in %s (exit code %d%s)"
	gitInitExecutionFailureTemplateConstant         = "Unable to initialize repository in %s: %s"
	gitAddStartTemplateConstant                     = "Staging %s in %s"
	gitAddSuccessTemplateConstant                   = "Staged %s in %s"
	gitAddFailureTemplateConstant                   = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant          = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant                  = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant                = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant                = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant       = "Unable to create commit in %s with message %q: %s"
	gitPushStartTemplateConstant                    = "Pushing %s to %s from %s"
	gitForcePushStartTemplateConstant               = "Force pushing %s to %s from %s"
	gitPushSuccessTemplateConstant                  = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant                  = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant         = "Unable to push %s to %s from %s: %s"
	rsyncStartTemplateConstant                      = "Copying %s to %s"
	rsyncSuccessTemplateConstant                    = "Copied %s to %s"
	rsyncFailureTemplateConstant                    = "Failed to copy %s to %s (exit code %d%s)"
	rsyncExecutionFailureTemplateConstant           = "Unable to copy %s to %s: %s"
	rsyncMinimumPositionalArgumentCountConstant     = 2
	gitCloneMinimumPositionalArgumentCountConstant  = 2
	gitPushMinimumPositionalArgumentCountConstant   = 2
	gitCloneSourcePositionalArgumentIndexConstant   = 0
	gitCloneTargetPositionalArgumentIndexConstant   = 1
	gitPushRemotePositionalArgumentIndexConstant    = 0
	gitPushReferencePositionalArgumentIndexConstant = 1
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandRsync:
		return formatter.describeRsyncMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitCloneSubcommandNameConstant:
		return formatter.describeGitCloneMessage(command, result, failure, stage)
	case gitInitSubcommandNameConstant:
		return formatter.selectStageMessage(stage, result, failure,
			fmt.Sprintf(gitInitStartTemplateConstant, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitInitSuccessTemplateConstant, formatter.describeWorkingDirectory(command)),
			gitInitFailureTemplateConstant,
			gitInitExecutionFailureTemplateConstant,
			formatter.describeWorkingDirectory(command),
		)
	case gitAddSubcommandNameConstant:
		stagedPaths := strings.Join(formatter.positionalArguments(command.Details.Arguments[1:]), commandArgumentsJoinSeparatorConstant)
		workingDirectory := formatter.describeWorkingDirectory(command)
		return formatter.selectStageMessage(stage, result, failure,
			fmt.Sprintf(gitAddStartTemplateConstant, formatter.ensureValue(stagedPaths), workingDirectory),
			fmt.Sprintf(gitAddSuccessTemplateConstant, formatter.ensureValue(stagedPaths), workingDirectory),
			gitAddFailureTemplateConstant,
			gitAddExecutionFailureTemplateConstant,
			formatter.ensureValue(stagedPaths), workingDirectory,
		)
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.extractCommitMessage(command.Details.Arguments)
		workingDirectory := formatter.describeWorkingDirectory(command)
		return formatter.selectStageMessage(stage, result, failure,
			fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage),
			fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage),
			gitCommitFailureTemplateConstant,
			gitCommitExecutionFailureTemplateConstant,
			workingDirectory, commitMessage,
		)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positional := formatter.positionalArguments(command.Details.Arguments[1:])
	if len(positional) < gitCloneMinimumPositionalArgumentCountConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	source := positional[gitCloneSourcePositionalArgumentIndexConstant]
	target := positional[gitCloneTargetPositionalArgumentIndexConstant]
	return formatter.selectStageMessage(stage, result, failure,
		fmt.Sprintf(gitCloneStartTemplateConstant, source, target),
		fmt.Sprintf(gitCloneSuccessTemplateConstant, source, target),
		gitCloneFailureTemplateConstant,
		gitCloneExecutionFailureTemplateConstant,
		source, target,
	)
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positional := formatter.positionalArguments(command.Details.Arguments[1:])
	remoteName := defaultPushRemoteLabelConstant
	reference := fallbackUnknownValueLabelConstant
	if len(positional) >= gitPushMinimumPositionalArgumentCountConstant {
		remoteName = positional[gitPushRemotePositionalArgumentIndexConstant]
		reference = positional[gitPushReferencePositionalArgumentIndexConstant]
	}
	workingDirectory := formatter.describeWorkingDirectory(command)

	startTemplate := gitPushStartTemplateConstant
	if containsArgument(command.Details.Arguments, gitForceFlagConstant) {
		startTemplate = gitForcePushStartTemplateConstant
	}

	return formatter.selectStageMessage(stage, result, failure,
		fmt.Sprintf(startTemplate, reference, remoteName, workingDirectory),
		fmt.Sprintf(gitPushSuccessTemplateConstant, reference, remoteName, workingDirectory),
		gitPushFailureTemplateConstant,
		gitPushExecutionFailureTemplateConstant,
		reference, remoteName, workingDirectory,
	)
}

func (formatter CommandMessageFormatter) describeRsyncMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positional := formatter.positionalArguments(command.Details.Arguments)
	if len(positional) < rsyncMinimumPositionalArgumentCountConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	source := positional[len(positional)-2]
	target := positional[len(positional)-1]
	return formatter.selectStageMessage(stage, result, failure,
		fmt.Sprintf(rsyncStartTemplateConstant, source, target),
		fmt.Sprintf(rsyncSuccessTemplateConstant, source, target),
		rsyncFailureTemplateConstant,
		rsyncExecutionFailureTemplateConstant,
		source, target,
	)
}

// selectStageMessage picks the message for the stage; failure templates receive the subject values followed by exit details.
func (formatter CommandMessageFormatter) selectStageMessage(stage messageStage, result ExecutionResult, failure error, startMessage string, successMessage string, failureTemplate string, executionFailureTemplate string, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		failureArguments := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(failureTemplate, failureArguments...)
	default:
		executionArguments := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(executionFailureTemplate, executionArguments...)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	workingDirectorySuffix := emptyStringConstant
	if trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmed := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmed) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, gitFlagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == gitMessageFlagConstant && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}

func containsArgument(arguments []string, target string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == target {
			return true
		}
	}
	return false
}
