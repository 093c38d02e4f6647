package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitbundle/internal/execshell"
)

const (
	noRemotesMessageConstant          = "no git remotes configured"
	gitExecutorMissingMessageConstant = "git executor not configured"
	remoteListFailureTemplateConstant = "failed to list remotes: %w"
	remoteURLFailureTemplateConstant  = "failed to resolve url for remote %q: %w"
	gitRemoteSubcommandConstant       = "remote"
	gitRemoteGetURLSubcommandConstant = "get-url"
	lineSeparatorConstant             = "\n"
)

// ErrNoRemotesConfigured indicates the repository has no configured remotes.
var ErrNoRemotesConfigured = errors.New(noRemotesMessageConstant)

// ErrGitExecutorNotConfigured indicates the resolver was built without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor runs git commands and reports their buffered results.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RemoteInfo names a configured remote and its resolved URL.
type RemoteInfo struct {
	Name string
	URL  string
}

// RemoteResolver discovers the configured remotes of a repository.
type RemoteResolver struct {
	executor GitExecutor
}

// NewRemoteResolver constructs a resolver around the provided git executor.
func NewRemoteResolver(executor GitExecutor) (*RemoteResolver, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RemoteResolver{executor: executor}, nil
}

// ResolveFirstRemote returns the first configured remote and its URL. It
// fails with ErrNoRemotesConfigured when the repository has none, before any
// further work is attempted.
func (resolver *RemoteResolver) ResolveFirstRemote(executionContext context.Context, repositoryPath string) (RemoteInfo, error) {
	return resolver.ResolveRemote(executionContext, repositoryPath, "")
}

// ResolveRemote returns the named remote and its URL. An empty name selects
// the first configured remote. Resolution fails with ErrNoRemotesConfigured
// when the repository has no remotes at all.
func (resolver *RemoteResolver) ResolveRemote(executionContext context.Context, repositoryPath string, requestedRemoteName string) (RemoteInfo, error) {
	listResult, listError := resolver.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant},
		WorkingDirectory: repositoryPath,
	})
	if listError != nil {
		return RemoteInfo{}, fmt.Errorf(remoteListFailureTemplateConstant, listError)
	}

	if len(firstRemoteName(listResult.StandardOutput)) == 0 {
		return RemoteInfo{}, ErrNoRemotesConfigured
	}

	remoteName := strings.TrimSpace(requestedRemoteName)
	if len(remoteName) == 0 {
		remoteName = firstRemoteName(listResult.StandardOutput)
	}

	urlResult, urlError := resolver.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if urlError != nil {
		return RemoteInfo{}, fmt.Errorf(remoteURLFailureTemplateConstant, remoteName, urlError)
	}

	return RemoteInfo{Name: remoteName, URL: strings.TrimSpace(urlResult.StandardOutput)}, nil
}

func firstRemoteName(remoteListing string) string {
	for _, remoteLine := range strings.Split(remoteListing, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(remoteLine)
		if len(trimmedLine) > 0 {
			return trimmedLine
		}
	}
	return ""
}
