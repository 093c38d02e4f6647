package bundle

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/gitbundle/internal/execshell"
	"github.com/temirov/gitbundle/internal/stream"
)

const (
	gitProgramNameConstant                   = "git"
	gitForEachRefSubcommandConstant          = "for-each-ref"
	gitForEachRefFormatFlagConstant          = "--format=%(refname)"
	remoteReferenceNamespaceTemplateConstant = "refs/remotes/%s"
	gitBundleSubcommandConstant              = "bundle"
	gitBundleCreateSubcommandConstant        = "create"
	gitBundleStdoutArgumentConstant          = "-"
	gitBundleStdinFlagConstant               = "--stdin"
	opensslEncSubcommandConstant             = "enc"
	opensslCipherFlagConstant                = "-aes-256-cbc"
	opensslPBKDF2FlagConstant                = "-pbkdf2"
	opensslSaltFlagConstant                  = "-salt"
	opensslPassFlagConstant                  = "-pass"
	opensslPassArgumentTemplateConstant      = "pass:%s"
	opensslOutputFlagConstant                = "-out"
	pipelineStartedLogMessageConstant        = "pipeline stage started"
	pipelineCompletedLogMessageConstant      = "pipeline completed"
	logFieldProgramNameConstant              = "program"
	logFieldOutputPathConstant               = "output_path"
)

// PipelineOptions configures a single bundle pipeline run.
type PipelineOptions struct {
	RepositoryPath        string
	RemoteName            string
	Password              string
	OutputPath            string
	EncryptionProgram     string
	KillSiblingsOnFailure bool
}

// PipelineCoordinator launches the fixed process topology and awaits every
// spawned process.
//
// Two legs exist: the reference lister's output feeds the bundle producer's
// input directly at pipe level, while the producer's output is pumped
// through the streaming patch filter into the encryptor's input. Every
// process outcome is awaited even after a failure; the first process
// failure is the one surfaced. By default a failing stage does not kill its
// siblings, letting surviving legs drain; KillSiblingsOnFailure switches to
// cancellation of the whole topology on first failure.
type PipelineCoordinator struct {
	logger *zap.Logger
}

// NewPipelineCoordinator constructs a coordinator logging through the
// supplied logger.
func NewPipelineCoordinator(logger *zap.Logger) *PipelineCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineCoordinator{logger: logger}
}

// pipelineOutcomes collects failures in completion order so process
// outcomes take precedence over transfer plumbing errors when both occur
// (a failing encryptor also breaks the pump's pipe).
type pipelineOutcomes struct {
	mutex            sync.Mutex
	processFailures  []error
	transferFailures []error
}

func (outcomes *pipelineOutcomes) recordProcessFailure(failure error) {
	outcomes.mutex.Lock()
	defer outcomes.mutex.Unlock()
	outcomes.processFailures = append(outcomes.processFailures, failure)
}

func (outcomes *pipelineOutcomes) recordTransferFailure(failure error) {
	outcomes.mutex.Lock()
	defer outcomes.mutex.Unlock()
	outcomes.transferFailures = append(outcomes.transferFailures, failure)
}

func (outcomes *pipelineOutcomes) firstFailure() error {
	outcomes.mutex.Lock()
	defer outcomes.mutex.Unlock()
	if len(outcomes.processFailures) > 0 {
		return outcomes.processFailures[0]
	}
	if len(outcomes.transferFailures) > 0 {
		return outcomes.transferFailures[0]
	}
	return nil
}

// Run executes the pipeline to completion.
func (coordinator *PipelineCoordinator) Run(executionContext context.Context, options PipelineOptions) error {
	processContext := executionContext
	var group *errgroup.Group
	if options.KillSiblingsOnFailure {
		group, processContext = errgroup.WithContext(executionContext)
	} else {
		group = &errgroup.Group{}
	}

	referenceLister := execshell.NewPipelineProcess(processContext, gitProgramNameConstant,
		gitForEachRefSubcommandConstant,
		gitForEachRefFormatFlagConstant,
		fmt.Sprintf(remoteReferenceNamespaceTemplateConstant, options.RemoteName),
	)
	referenceLister.SetWorkingDirectory(options.RepositoryPath)

	archiveProducer := execshell.NewPipelineProcess(processContext, gitProgramNameConstant,
		gitBundleSubcommandConstant,
		gitBundleCreateSubcommandConstant,
		gitBundleStdoutArgumentConstant,
		gitBundleStdinFlagConstant,
	)
	archiveProducer.SetWorkingDirectory(options.RepositoryPath)
	archiveProducer.InheritStandardError()

	encryptionProgram := options.EncryptionProgram
	if len(encryptionProgram) == 0 {
		encryptionProgram = defaultEncryptionProgramConstant
	}
	archiveEncryptor := execshell.NewPipelineProcess(processContext, encryptionProgram,
		opensslEncSubcommandConstant,
		opensslCipherFlagConstant,
		opensslPBKDF2FlagConstant,
		opensslSaltFlagConstant,
		opensslPassFlagConstant,
		fmt.Sprintf(opensslPassArgumentTemplateConstant, options.Password),
		opensslOutputFlagConstant,
		options.OutputPath,
	)

	listerOutput, listerPipeError := referenceLister.StandardOutputPipe()
	if listerPipeError != nil {
		return listerPipeError
	}
	archiveProducer.ConnectStandardInput(listerOutput)

	producerOutput, producerPipeError := archiveProducer.StandardOutputPipe()
	if producerPipeError != nil {
		_ = listerOutput.Close()
		return producerPipeError
	}

	encryptorInput, encryptorPipeError := archiveEncryptor.StandardInputPipe()
	if encryptorPipeError != nil {
		_ = listerOutput.Close()
		_ = producerOutput.Close()
		return encryptorPipeError
	}

	outcomes := &pipelineOutcomes{}
	pipelineStages := []*execshell.PipelineProcess{referenceLister, archiveProducer, archiveEncryptor}

	var spawnFailure error
	for _, pipelineStage := range pipelineStages {
		if startError := pipelineStage.Start(); startError != nil {
			spawnFailure = startError
			break
		}
		coordinator.logger.Debug(pipelineStartedLogMessageConstant,
			zap.String(logFieldProgramNameConstant, pipelineStage.ProgramName()),
		)
	}

	for _, pipelineStage := range pipelineStages {
		if !pipelineStage.Started() {
			continue
		}
		startedStage := pipelineStage
		group.Go(func() error {
			waitError := startedStage.Wait()
			if waitError != nil {
				outcomes.recordProcessFailure(waitError)
			}
			return waitError
		})
	}

	if spawnFailure != nil {
		_ = listerOutput.Close()
		_ = producerOutput.Close()
		_ = encryptorInput.Close()
		_ = group.Wait()
		return spawnFailure
	}

	patchFilter := stream.NewPatchFilter()
	group.Go(func() error {
		pumpError := patchFilter.Pump(producerOutput, encryptorInput)
		closeError := encryptorInput.Close()
		_ = producerOutput.Close()
		if pumpError == nil {
			pumpError = closeError
		}
		if pumpError != nil {
			outcomes.recordTransferFailure(pumpError)
		}
		return pumpError
	})

	_ = group.Wait()
	if firstFailure := outcomes.firstFailure(); firstFailure != nil {
		return firstFailure
	}

	coordinator.logger.Debug(pipelineCompletedLogMessageConstant,
		zap.String(logFieldOutputPathConstant, options.OutputPath),
	)
	return nil
}
