package execshell

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	commandRunnerMissingMessageConstant = "command runner not configured"
	commandFailureTemplateConstant      = "%s exited with code %d"
	commandFailureDetailSuffixConstant  = ": %s"
	commandStartedLogMessageConstant    = "executing command"
	commandCompletedLogMessageConstant  = "command completed"
	commandFailedLogMessageConstant     = "command failed"
	logFieldCommandNameConstant         = "command"
	logFieldCommandArgumentsConstant    = "arguments"
	logFieldCommandExitCodeConstant     = "exit_code"
	logFieldCommandWorkingDirConstant   = "working_directory"
)

// ErrCommandRunnerNotConfigured indicates the executor was built without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerMissingMessageConstant)

// CommandRunner represents the ability to run a shell command to completion.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran but exited unsuccessfully.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including captured standard error.
func (failure CommandFailedError) Error() string {
	message := fmt.Sprintf(commandFailureTemplateConstant, failure.Command.Name, failure.Result.ExitCode)
	if len(failure.Result.StandardError) > 0 {
		message += fmt.Sprintf(commandFailureDetailSuffixConstant, failure.Result.StandardError)
	}
	return message
}

// ShellExecutor coordinates buffered command execution with structured logging.
type ShellExecutor struct {
	logger *zap.Logger
	runner CommandRunner
}

// NewShellExecutor constructs an executor around the provided runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShellExecutor{logger: logger, runner: runner}, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the command and converts non-zero exits into CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(commandStartedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldCommandWorkingDirConstant, command.Details.WorkingDirectory),
	)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(commandFailedLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Error(runError),
		)
		return ExecutionResult{}, runError
	}

	if executionResult.ExitCode != 0 {
		failure := CommandFailedError{Command: command, Result: executionResult}
		executor.logger.Error(commandFailedLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Int(logFieldCommandExitCodeConstant, executionResult.ExitCode),
		)
		return executionResult, failure
	}

	executor.logger.Debug(commandCompletedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Int(logFieldCommandExitCodeConstant, executionResult.ExitCode),
	)
	return executionResult, nil
}
