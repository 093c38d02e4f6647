package bundle

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/temirov/gitbundle/internal/execshell"
	"github.com/temirov/gitbundle/internal/gitrepo"
	"github.com/temirov/gitbundle/internal/utils"
)

const (
	commandUseConstant                   = "pack <output-file>"
	commandShortDescriptionConstant      = "Package remote-tracking history into an encrypted bundle"
	commandLongDescriptionConstant       = "pack bundles the repository's remote-tracking references, rewrites them to local branch names in flight, encrypts the result with a password, and prints instructions for reconstructing an equivalent clone."
	remoteFlagNameConstant               = "remote"
	remoteFlagDescriptionConstant        = "Remote whose tracking references are packaged (defaults to the first configured remote)"
	passwordFlagNameConstant             = "password"
	passwordFlagDescriptionConstant      = "Password protecting the archive (generated randomly when omitted)"
	passwordPromptFlagNameConstant       = "password-prompt"
	passwordPromptFlagDescription        = "Read the archive password from the terminal without echo"
	killOnFailureFlagNameConstant        = "kill-on-failure"
	killOnFailureFlagDescriptionConstant = "Terminate remaining pipeline processes when one fails"
	wrongArgumentCountMessageConstant    = "exactly one output file path is required"
	conflictingPasswordFlagsMessage      = "use at most one of --password or --password-prompt"
	passwordPromptMessageConstant        = "Archive password: "
	flagPrefixConstant                   = "-"
	promptOutputNewlineConstant          = "\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PasswordPrompter reads a password interactively.
type PasswordPrompter func() (string, error)

// CommandBuilder assembles the pack command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           gitrepo.GitExecutor
	PipelineRunner        PipelineRunner
	PasswordGenerator     PasswordGenerator
	PasswordPrompter      PasswordPrompter
	WorkingDirectory      string
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the pack command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(remoteFlagNameConstant, "", remoteFlagDescriptionConstant)
	command.Flags().String(passwordFlagNameConstant, "", passwordFlagDescriptionConstant)
	command.Flags().Bool(passwordPromptFlagNameConstant, false, passwordPromptFlagDescription)
	command.Flags().Bool(killOnFailureFlagNameConstant, false, killOnFailureFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	positionalArguments := countablePositionals(arguments)
	if len(positionalArguments) != 1 {
		if command != nil {
			_ = command.Help()
		}
		return errors.New(wrongArgumentCountMessageConstant)
	}
	outputPath := positionalArguments[0]

	configuration := builder.resolveConfiguration()

	remoteName, remoteFlagError := command.Flags().GetString(remoteFlagNameConstant)
	if remoteFlagError != nil {
		return remoteFlagError
	}
	if len(strings.TrimSpace(remoteName)) == 0 {
		remoteName = configuration.RemoteName
	}

	password, passwordFlagError := command.Flags().GetString(passwordFlagNameConstant)
	if passwordFlagError != nil {
		return passwordFlagError
	}
	promptRequested, promptFlagError := command.Flags().GetBool(passwordPromptFlagNameConstant)
	if promptFlagError != nil {
		return promptFlagError
	}
	if len(password) > 0 && promptRequested {
		return errors.New(conflictingPasswordFlagsMessage)
	}
	if promptRequested {
		promptedPassword, promptError := builder.resolvePasswordPrompter()()
		if promptError != nil {
			return promptError
		}
		password = promptedPassword
	}

	killOnFailure, killFlagError := command.Flags().GetBool(killOnFailureFlagNameConstant)
	if killFlagError != nil {
		return killFlagError
	}
	if !command.Flags().Changed(killOnFailureFlagNameConstant) {
		killOnFailure = configuration.KillSiblingsOnFailure
	}

	logger := builder.resolveLogger()

	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return executorError
		}
		gitExecutor = shellExecutor
	}

	remoteResolver, resolverError := gitrepo.NewRemoteResolver(gitExecutor)
	if resolverError != nil {
		return resolverError
	}

	pipelineRunner := builder.PipelineRunner
	if pipelineRunner == nil {
		pipelineRunner = NewPipelineCoordinator(logger)
	}

	passwordGenerator := builder.PasswordGenerator
	if passwordGenerator == nil {
		passwordGenerator = RandomPasswordGenerator{}
	}

	repositoryPath := builder.WorkingDirectory
	if len(repositoryPath) == 0 {
		currentDirectory, directoryError := os.Getwd()
		if directoryError != nil {
			return directoryError
		}
		repositoryPath = currentDirectory
	}

	service, serviceCreationError := NewService(Dependencies{
		RemoteResolver:    remoteResolver,
		PasswordGenerator: passwordGenerator,
		PipelineRunner:    pipelineRunner,
		Output:            utils.NewFlushingWriter(command.OutOrStdout()),
		Logger:            logger,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	_, packError := service.Pack(command.Context(), Options{
		RepositoryPath:        repositoryPath,
		OutputPath:            outputPath,
		RemoteName:            remoteName,
		Password:              password,
		PasswordLength:        configuration.PasswordLength,
		EncryptionProgram:     configuration.EncryptionProgram,
		KillSiblingsOnFailure: killOnFailure,
	})
	return packError
}

// countablePositionals filters out anything carrying a flag prefix so only
// genuine positional arguments participate in the count.
func countablePositionals(arguments []string) []string {
	var positionalArguments []string
	for _, argument := range arguments {
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		positionalArguments = append(positionalArguments, argument)
	}
	return positionalArguments
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolvePasswordPrompter() PasswordPrompter {
	if builder.PasswordPrompter != nil {
		return builder.PasswordPrompter
	}
	return func() (string, error) {
		fmt.Fprint(os.Stderr, passwordPromptMessageConstant)
		passwordBytes, readError := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprint(os.Stderr, promptOutputNewlineConstant)
		if readError != nil {
			return "", readError
		}
		return string(passwordBytes), nil
	}
}
