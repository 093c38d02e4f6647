package bundle

import "strings"

const (
	defaultEncryptionProgramConstant = "openssl"
	defaultPasswordLengthConstant    = 32
)

// CommandConfiguration captures the persisted settings for the pack command.
type CommandConfiguration struct {
	RemoteName            string `mapstructure:"remote"`
	EncryptionProgram     string `mapstructure:"encryption_program"`
	PasswordLength        int    `mapstructure:"password_length"`
	KillSiblingsOnFailure bool   `mapstructure:"kill_siblings_on_failure"`
}

// DefaultCommandConfiguration returns the built-in pack settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		EncryptionProgram: defaultEncryptionProgramConstant,
		PasswordLength:    defaultPasswordLengthConstant,
	}
}

// Sanitize normalizes whitespace and substitutes defaults for empty values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	sanitized.EncryptionProgram = strings.TrimSpace(configuration.EncryptionProgram)
	if len(sanitized.EncryptionProgram) == 0 {
		sanitized.EncryptionProgram = defaultEncryptionProgramConstant
	}
	if sanitized.PasswordLength <= 0 {
		sanitized.PasswordLength = defaultPasswordLengthConstant
	}
	return sanitized
}
