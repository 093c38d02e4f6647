package execshell

const (
	gitExecutableNameConstant     = "git"
	opensslExecutableNameConstant = "openssl"
)

// CommandName identifies an external executable.
type CommandName string

// Supported executable enumerations.
const (
	CommandGit     CommandName = CommandName(gitExecutableNameConstant)
	CommandOpenSSL CommandName = CommandName(opensslExecutableNameConstant)
)

// CommandDetails describes a single tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of a buffered execution.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}
