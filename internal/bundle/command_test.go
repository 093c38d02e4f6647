package bundle_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitbundle/internal/bundle"
	"github.com/temirov/gitbundle/internal/execshell"
)

type scriptedGitExecutor struct {
	outputs []string
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, _ execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if len(executor.outputs) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	nextOutput := executor.outputs[0]
	executor.outputs = executor.outputs[1:]
	return execshell.ExecutionResult{StandardOutput: nextOutput}, nil
}

func newPackCommand(t *testing.T, runner *recordingPipelineRunner) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	builder := bundle.CommandBuilder{
		LoggerProvider:    func() *zap.Logger { return zap.NewNop() },
		GitExecutor:       &scriptedGitExecutor{outputs: []string{"origin\n", "git@github.com:acme/widgets.git\n"}},
		PipelineRunner:    runner,
		PasswordGenerator: fixedPasswordGenerator{password: "generated"},
		WorkingDirectory:  t.TempDir(),
	}
	command, buildError := builder.Build()
	require.NoError(t, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetContext(context.Background())
	return command, &output
}

func TestBuildReturnsCommand(t *testing.T) {
	builder := bundle.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	require.IsType(t, &cobra.Command{}, command)
}

func TestPackCommandRequiresExactlyOneOutputPath(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "no_arguments", arguments: []string{}},
		{name: "two_positional_arguments", arguments: []string{"first.enc", "second.enc"}},
		{name: "flag_arguments_do_not_count", arguments: []string{"--kill-on-failure"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command, output := newPackCommand(t, &recordingPipelineRunner{})
			command.SetArgs(testCase.arguments)
			executionError := command.Execute()
			require.Error(t, executionError)
			require.Contains(t, output.String(), "Usage:")
		})
	}
}

func TestPackCommandRunsPipeline(t *testing.T) {
	runner := &recordingPipelineRunner{}
	command, output := newPackCommand(t, runner)
	command.SetArgs([]string{"archive.enc"})

	require.NoError(t, command.Execute())
	require.Len(t, runner.recordedOptions, 1)
	require.Equal(t, "origin", runner.recordedOptions[0].RemoteName)
	require.Equal(t, "archive.enc", runner.recordedOptions[0].OutputPath)
	require.Equal(t, "generated", runner.recordedOptions[0].Password)
	require.Contains(t, output.String(), "git clone widgets.bundle widgets")
}

func TestPackCommandPasswordFlagOverridesGeneration(t *testing.T) {
	runner := &recordingPipelineRunner{}
	command, output := newPackCommand(t, runner)
	command.SetArgs([]string{"--password", "explicit", "archive.enc"})

	require.NoError(t, command.Execute())
	require.Len(t, runner.recordedOptions, 1)
	require.Equal(t, "explicit", runner.recordedOptions[0].Password)
	require.NotContains(t, output.String(), "Decryption password")
}

func TestPackCommandRejectsConflictingPasswordFlags(t *testing.T) {
	command, _ := newPackCommand(t, &recordingPipelineRunner{})
	command.SetArgs([]string{"--password", "explicit", "--password-prompt", "archive.enc"})
	require.Error(t, command.Execute())
}

func TestPackCommandUsesPasswordPrompter(t *testing.T) {
	runner := &recordingPipelineRunner{}
	builder := bundle.CommandBuilder{
		LoggerProvider:    func() *zap.Logger { return zap.NewNop() },
		GitExecutor:       &scriptedGitExecutor{outputs: []string{"origin\n", "git@github.com:acme/widgets.git\n"}},
		PipelineRunner:    runner,
		PasswordGenerator: fixedPasswordGenerator{password: "generated"},
		PasswordPrompter:  func() (string, error) { return "prompted", nil },
		WorkingDirectory:  t.TempDir(),
	}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())
	command.SetArgs([]string{"--password-prompt", "archive.enc"})

	require.NoError(t, command.Execute())
	require.Len(t, runner.recordedOptions, 1)
	require.Equal(t, "prompted", runner.recordedOptions[0].Password)
}
