package tests

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitbundle/cmd/cli"
)

const (
	packIntegrationGitExecutableName     = "git"
	packIntegrationOpenSSLExecutableName = "openssl"
	packIntegrationArchiveFileName       = "history.enc"
	packIntegrationSuppliedPassword      = "integration-secret"
	packIntegrationLogLevelFlagConstant  = "--log-level"
	packIntegrationErrorLevelConstant    = "error"
	packIntegrationGitStubScript         = `#!/bin/sh
case "$1" in
remote)
	if [ "$2" = "get-url" ]; then
		printf 'https://github.com/acme/widget.git\n'
	else
		printf 'origin\n'
	fi
	;;
for-each-ref)
	printf 'refs/remotes/origin/main\n'
	;;
bundle)
	cat >/dev/null
	printf '# v2 git bundle\nabc123 refs/remotes/origin/main\n\nOPAQUE-PAYLOAD'
	;;
esac
`
	packIntegrationOpenSSLStubScript = `#!/bin/sh
outputPath=""
previousArgument=""
for argument in "$@"; do
	if [ "$previousArgument" = "-out" ]; then
		outputPath="$argument"
	fi
	previousArgument="$argument"
done
cat > "$outputPath"
`
	packIntegrationExpectedArchiveContent = "# v2 git bundle\nabc123 refs/heads/main\n\nOPAQUE-PAYLOAD"
)

func installPackIntegrationStubs(testInstance *testing.T) {
	testInstance.Helper()

	stubDirectory := testInstance.TempDir()
	gitStubPath := filepath.Join(stubDirectory, packIntegrationGitExecutableName)
	require.NoError(testInstance, os.WriteFile(gitStubPath, []byte(packIntegrationGitStubScript), 0o755))
	openSSLStubPath := filepath.Join(stubDirectory, packIntegrationOpenSSLExecutableName)
	require.NoError(testInstance, os.WriteFile(openSSLStubPath, []byte(packIntegrationOpenSSLStubScript), 0o755))
	testInstance.Setenv("PATH", stubDirectory+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestPackCommandIntegration(testInstance *testing.T) {
	installPackIntegrationStubs(testInstance)
	archivePath := filepath.Join(testInstance.TempDir(), packIntegrationArchiveFileName)

	application := cli.NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.RootCommand().SetOut(outputBuffer)
	application.RootCommand().SetErr(outputBuffer)
	application.RootCommand().SetArgs([]string{
		"pack",
		archivePath,
		"--password", packIntegrationSuppliedPassword,
		packIntegrationLogLevelFlagConstant, packIntegrationErrorLevelConstant,
	})

	require.NoError(testInstance, application.Execute())

	archiveBytes, readError := os.ReadFile(archivePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, packIntegrationExpectedArchiveContent, string(archiveBytes))

	outputText := outputBuffer.String()
	require.Contains(testInstance, outputText, "Encrypted bundle written to "+archivePath)
	require.NotContains(testInstance, outputText, "Decryption password:")
	require.Contains(testInstance, outputText, "To reconstruct the clone:")
	require.Contains(testInstance, outputText, "openssl enc -d -aes-256-cbc -pbkdf2 -salt -in "+archivePath)
	require.Contains(testInstance, outputText, "git clone widget.bundle widget")
}

func TestPackCommandIntegrationGeneratesPassword(testInstance *testing.T) {
	installPackIntegrationStubs(testInstance)
	archivePath := filepath.Join(testInstance.TempDir(), packIntegrationArchiveFileName)

	application := cli.NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.RootCommand().SetOut(outputBuffer)
	application.RootCommand().SetErr(outputBuffer)
	application.RootCommand().SetArgs([]string{
		"pack",
		archivePath,
		packIntegrationLogLevelFlagConstant, packIntegrationErrorLevelConstant,
	})

	require.NoError(testInstance, application.Execute())
	require.Contains(testInstance, outputBuffer.String(), "Decryption password: ")
	require.FileExists(testInstance, archivePath)
}

func TestPackCommandIntegrationRejectsMissingOutputPath(testInstance *testing.T) {
	installPackIntegrationStubs(testInstance)

	application := cli.NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.RootCommand().SetOut(outputBuffer)
	application.RootCommand().SetErr(outputBuffer)
	application.RootCommand().SetArgs([]string{
		"pack",
		packIntegrationLogLevelFlagConstant, packIntegrationErrorLevelConstant,
	})

	require.Error(testInstance, application.Execute())
	require.Contains(testInstance, outputBuffer.String(), "pack <output-file>")
}
