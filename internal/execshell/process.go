package execshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
)

const (
	processExitTemplateConstant   = "%s exited with code %d"
	processSignalTemplateConstant = "%s terminated by signal %s"
	processSpawnTemplateConstant  = "failed to start %s: %w"
)

// ProcessExitError reports a pipeline process that exited with a non-zero code.
type ProcessExitError struct {
	ProgramName string
	ExitCode    int
}

// Error names the program and its exit code.
func (failure ProcessExitError) Error() string {
	return fmt.Sprintf(processExitTemplateConstant, failure.ProgramName, failure.ExitCode)
}

// ProcessSignalError reports a pipeline process terminated by a signal.
type ProcessSignalError struct {
	ProgramName string
	SignalName  string
}

// Error names the program and the terminating signal.
func (failure ProcessSignalError) Error() string {
	return fmt.Sprintf(processSignalTemplateConstant, failure.ProgramName, failure.SignalName)
}

// PipelineProcess wraps one external stage of a data pipeline. Unlike the
// buffered ShellExecutor path, its standard streams are exposed as operating
// system pipes so stages connect to each other (or to an in-process filter)
// without intermediate buffering.
//
// Pipe ends handed to the child are closed in the parent once the process
// starts; without that the reader of a stage's output would never observe
// end of stream.
type PipelineProcess struct {
	programName string
	command     *exec.Cmd
	childFiles  []*os.File
	started     bool
}

// NewPipelineProcess prepares a pipeline stage running programName with the
// supplied arguments. The process is not started until Start is called.
func NewPipelineProcess(executionContext context.Context, programName string, arguments ...string) *PipelineProcess {
	return &PipelineProcess{
		programName: programName,
		command:     exec.CommandContext(executionContext, programName, arguments...),
	}
}

// ProgramName returns the executable this stage runs.
func (process *PipelineProcess) ProgramName() string {
	return process.programName
}

// SetWorkingDirectory runs the process in the supplied directory.
func (process *PipelineProcess) SetWorkingDirectory(workingDirectory string) {
	process.command.Dir = workingDirectory
}

// InheritStandardError forwards the process's standard error to the parent's.
func (process *PipelineProcess) InheritStandardError() {
	process.command.Stderr = os.Stderr
}

// SetStandardError directs the process's standard error to the supplied writer.
func (process *PipelineProcess) SetStandardError(destination io.Writer) {
	process.command.Stderr = destination
}

// StandardOutputPipe creates a pipe carrying the process's standard output
// and returns its read end. The caller owns the read end and must drain it
// to end of stream before relying on Wait semantics of downstream stages.
func (process *PipelineProcess) StandardOutputPipe() (io.ReadCloser, error) {
	readEnd, writeEnd, pipeError := os.Pipe()
	if pipeError != nil {
		return nil, pipeError
	}
	process.command.Stdout = writeEnd
	process.childFiles = append(process.childFiles, writeEnd)
	return readEnd, nil
}

// StandardInputPipe creates a pipe feeding the process's standard input and
// returns its write end. Closing the write end signals end of input to the
// process.
func (process *PipelineProcess) StandardInputPipe() (io.WriteCloser, error) {
	readEnd, writeEnd, pipeError := os.Pipe()
	if pipeError != nil {
		return nil, pipeError
	}
	process.command.Stdin = readEnd
	process.childFiles = append(process.childFiles, readEnd)
	return writeEnd, nil
}

// ConnectStandardInput feeds the process from the supplied upstream stream.
// When the stream is an operating system pipe end, the connection happens at
// file descriptor level and the parent's copy is closed on start.
func (process *PipelineProcess) ConnectStandardInput(source io.Reader) {
	process.command.Stdin = source
	if sourceFile, isFile := source.(*os.File); isFile {
		process.childFiles = append(process.childFiles, sourceFile)
	}
}

// Start launches the executable. A spawn failure (for example a missing
// executable) is returned immediately; pipe ends created for the child are
// released in the parent either way.
func (process *PipelineProcess) Start() error {
	startError := process.command.Start()
	process.closeChildFiles()
	if startError != nil {
		return fmt.Errorf(processSpawnTemplateConstant, process.programName, startError)
	}
	process.started = true
	return nil
}

// Started reports whether the underlying process was successfully launched.
func (process *PipelineProcess) Started() bool {
	return process.started
}

// Wait blocks until the process exits and classifies the outcome: nil for a
// zero exit, ProcessExitError for a non-zero code, ProcessSignalError for
// termination by signal. Other wait failures are returned unchanged.
func (process *PipelineProcess) Wait() error {
	waitError := process.command.Wait()
	if waitError == nil {
		return nil
	}

	exitError := &exec.ExitError{}
	if errors.As(waitError, &exitError) {
		if waitStatus, hasWaitStatus := exitError.Sys().(syscall.WaitStatus); hasWaitStatus && waitStatus.Signaled() {
			return ProcessSignalError{ProgramName: process.programName, SignalName: waitStatus.Signal().String()}
		}
		return ProcessExitError{ProgramName: process.programName, ExitCode: exitError.ExitCode()}
	}
	return waitError
}

func (process *PipelineProcess) closeChildFiles() {
	for _, childFile := range process.childFiles {
		_ = childFile.Close()
	}
	process.childFiles = nil
}
