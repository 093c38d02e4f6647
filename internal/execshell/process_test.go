package execshell_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitbundle/internal/execshell"
)

func TestPipelineProcessWaitClassifiesOutcomes(t *testing.T) {
	testCases := []struct {
		name            string
		script          string
		expectedMessage string
	}{
		{name: "successful_exit", script: "exit 0", expectedMessage: ""},
		{name: "non_zero_exit_names_program_and_code", script: "exit 2", expectedMessage: "sh exited with code 2"},
		{name: "signal_termination_names_program_and_signal", script: "kill -TERM $$", expectedMessage: "sh terminated by signal terminated"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			process := execshell.NewPipelineProcess(context.Background(), "sh", "-c", testCase.script)
			require.NoError(t, process.Start())
			require.True(t, process.Started())

			waitError := process.Wait()
			if len(testCase.expectedMessage) == 0 {
				require.NoError(t, waitError)
				return
			}
			require.Error(t, waitError)
			require.Equal(t, testCase.expectedMessage, waitError.Error())
		})
	}
}

func TestPipelineProcessExitErrorType(t *testing.T) {
	process := execshell.NewPipelineProcess(context.Background(), "sh", "-c", "exit 7")
	require.NoError(t, process.Start())

	waitError := process.Wait()
	exitFailure := execshell.ProcessExitError{}
	require.ErrorAs(t, waitError, &exitFailure)
	require.Equal(t, "sh", exitFailure.ProgramName)
	require.Equal(t, 7, exitFailure.ExitCode)
}

func TestPipelineProcessSpawnFailure(t *testing.T) {
	process := execshell.NewPipelineProcess(context.Background(), "gitbundle-nonexistent-executable")
	startError := process.Start()
	require.Error(t, startError)
	require.False(t, process.Started())
	require.Contains(t, startError.Error(), "gitbundle-nonexistent-executable")
}

func TestPipelineProcessStreamsThroughPipes(t *testing.T) {
	process := execshell.NewPipelineProcess(context.Background(), "cat")

	processInput, inputError := process.StandardInputPipe()
	require.NoError(t, inputError)
	processOutput, outputError := process.StandardOutputPipe()
	require.NoError(t, outputError)

	require.NoError(t, process.Start())

	_, writeError := processInput.Write([]byte("pipeline payload"))
	require.NoError(t, writeError)
	require.NoError(t, processInput.Close())

	echoedBytes, readError := io.ReadAll(processOutput)
	require.NoError(t, readError)
	require.Equal(t, "pipeline payload", string(echoedBytes))

	require.NoError(t, process.Wait())
}

func TestPipelineProcessConnectsStagesDirectly(t *testing.T) {
	producer := execshell.NewPipelineProcess(context.Background(), "sh", "-c", "printf 'first\\nsecond\\n'")
	producerOutput, producerOutputError := producer.StandardOutputPipe()
	require.NoError(t, producerOutputError)

	consumer := execshell.NewPipelineProcess(context.Background(), "cat")
	consumer.ConnectStandardInput(producerOutput)
	consumerOutput, consumerOutputError := consumer.StandardOutputPipe()
	require.NoError(t, consumerOutputError)

	require.NoError(t, producer.Start())
	require.NoError(t, consumer.Start())

	forwardedBytes, readError := io.ReadAll(consumerOutput)
	require.NoError(t, readError)
	require.Equal(t, "first\nsecond\n", string(forwardedBytes))

	require.NoError(t, producer.Wait())
	require.NoError(t, consumer.Wait())
}
