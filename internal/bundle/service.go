package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitbundle/internal/gitrepo"
)

const (
	outputPathRequiredMessageConstant        = "output file path must be provided"
	remoteResolverMissingMessageConstant     = "remote resolver not configured"
	pipelineRunnerMissingMessageConstant     = "pipeline runner not configured"
	passwordGeneratorMissingMessageConstant  = "password generator not configured"
	remoteResolutionFailureTemplateConstant  = "failed to resolve remote: %w"
	fallbackCloneDirectoryNameConstant       = "repository"
	archiveWrittenMessageTemplateConstant    = "Encrypted bundle written to %s\n"
	generatedPasswordMessageTemplateConstant = "Decryption password: %s\n"
	instructionsHeadingMessageConstant       = "\nTo reconstruct the clone:\n"
	decryptInstructionTemplateConstant       = "  %s enc -d -aes-256-cbc -pbkdf2 -salt -in %s -out %s.bundle -pass pass:<password>\n"
	cloneInstructionTemplateConstant         = "  git clone %s.bundle %s\n"
)

// ErrOutputPathRequired indicates the output path option was empty.
var ErrOutputPathRequired = errors.New(outputPathRequiredMessageConstant)

// ErrRemoteResolverNotConfigured indicates the remote resolver dependency was missing.
var ErrRemoteResolverNotConfigured = errors.New(remoteResolverMissingMessageConstant)

// ErrPipelineRunnerNotConfigured indicates the pipeline runner dependency was missing.
var ErrPipelineRunnerNotConfigured = errors.New(pipelineRunnerMissingMessageConstant)

// ErrPasswordGeneratorNotConfigured indicates the password generator dependency was missing.
var ErrPasswordGeneratorNotConfigured = errors.New(passwordGeneratorMissingMessageConstant)

// RemoteInfoResolver discovers the remote to package.
type RemoteInfoResolver interface {
	ResolveRemote(executionContext context.Context, repositoryPath string, remoteName string) (gitrepo.RemoteInfo, error)
}

// PipelineRunner executes the external process pipeline.
type PipelineRunner interface {
	Run(executionContext context.Context, options PipelineOptions) error
}

// PasswordGenerator produces archive passwords.
type PasswordGenerator interface {
	Generate(passwordLength int) (string, error)
}

// Dependencies enumerates external collaborators required for packing.
type Dependencies struct {
	RemoteResolver    RemoteInfoResolver
	PasswordGenerator PasswordGenerator
	PipelineRunner    PipelineRunner
	Output            io.Writer
	Logger            *zap.Logger
}

// Options configures a single pack operation.
type Options struct {
	RepositoryPath        string
	OutputPath            string
	RemoteName            string
	Password              string
	PasswordLength        int
	EncryptionProgram     string
	KillSiblingsOnFailure bool
}

// Result captures the observable outcomes of a pack operation.
type Result struct {
	RemoteName         string
	RemoteURL          string
	OutputPath         string
	Password           string
	PasswordGenerated  bool
	CloneDirectoryName string
}

// Service coordinates bundle packing runs.
type Service struct {
	remoteResolver    RemoteInfoResolver
	passwordGenerator PasswordGenerator
	pipelineRunner    PipelineRunner
	output            io.Writer
	logger            *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.RemoteResolver == nil {
		return nil, ErrRemoteResolverNotConfigured
	}
	if dependencies.PipelineRunner == nil {
		return nil, ErrPipelineRunnerNotConfigured
	}
	if dependencies.PasswordGenerator == nil {
		return nil, ErrPasswordGeneratorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		remoteResolver:    dependencies.RemoteResolver,
		passwordGenerator: dependencies.PasswordGenerator,
		pipelineRunner:    dependencies.PipelineRunner,
		output:            dependencies.Output,
		logger:            logger,
	}, nil
}

// Pack resolves the remote, obtains a password, runs the process pipeline,
// and prints reconstruction instructions. Remote resolution happens before
// any pipeline process is spawned, so a repository without remotes fails
// fast with no partial output file.
func (service *Service) Pack(executionContext context.Context, options Options) (Result, error) {
	trimmedOutputPath := strings.TrimSpace(options.OutputPath)
	if len(trimmedOutputPath) == 0 {
		return Result{}, ErrOutputPathRequired
	}

	remoteInfo, resolveError := service.remoteResolver.ResolveRemote(executionContext, options.RepositoryPath, options.RemoteName)
	if resolveError != nil {
		if errors.Is(resolveError, gitrepo.ErrNoRemotesConfigured) {
			return Result{}, resolveError
		}
		return Result{}, fmt.Errorf(remoteResolutionFailureTemplateConstant, resolveError)
	}

	password := options.Password
	passwordGenerated := false
	if len(password) == 0 {
		generatedPassword, generationError := service.passwordGenerator.Generate(options.PasswordLength)
		if generationError != nil {
			return Result{}, generationError
		}
		password = generatedPassword
		passwordGenerated = true
	}

	pipelineError := service.pipelineRunner.Run(executionContext, PipelineOptions{
		RepositoryPath:        options.RepositoryPath,
		RemoteName:            remoteInfo.Name,
		Password:              password,
		OutputPath:            trimmedOutputPath,
		EncryptionProgram:     options.EncryptionProgram,
		KillSiblingsOnFailure: options.KillSiblingsOnFailure,
	})
	if pipelineError != nil {
		return Result{}, pipelineError
	}

	result := Result{
		RemoteName:         remoteInfo.Name,
		RemoteURL:          remoteInfo.URL,
		OutputPath:         trimmedOutputPath,
		Password:           password,
		PasswordGenerated:  passwordGenerated,
		CloneDirectoryName: cloneDirectoryName(remoteInfo.URL),
	}
	service.printInstructions(result, options.EncryptionProgram)
	return result, nil
}

func (service *Service) printInstructions(result Result, encryptionProgram string) {
	if service.output == nil {
		return
	}
	if len(encryptionProgram) == 0 {
		encryptionProgram = defaultEncryptionProgramConstant
	}

	fmt.Fprintf(service.output, archiveWrittenMessageTemplateConstant, result.OutputPath)
	if result.PasswordGenerated {
		fmt.Fprintf(service.output, generatedPasswordMessageTemplateConstant, result.Password)
	}
	fmt.Fprint(service.output, instructionsHeadingMessageConstant)
	fmt.Fprintf(service.output, decryptInstructionTemplateConstant, encryptionProgram, result.OutputPath, result.CloneDirectoryName)
	fmt.Fprintf(service.output, cloneInstructionTemplateConstant, result.CloneDirectoryName, result.CloneDirectoryName)
}

func cloneDirectoryName(remoteURL string) string {
	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil || len(parsedRemote.Repository) == 0 {
		return fallbackCloneDirectoryNameConstant
	}
	return parsedRemote.Repository
}
