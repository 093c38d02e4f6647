package cli

import _ "embed"

//go:embed default_config.yaml
var defaultConfigurationYAML []byte

// EmbeddedDefaultConfiguration returns a copy of the default settings
// compiled into the binary: logging defaults plus the built-in pack
// configuration. The data is YAML, matching the configuration loader's type.
func EmbeddedDefaultConfiguration() []byte {
	duplicatedContent := make([]byte, len(defaultConfigurationYAML))
	copy(duplicatedContent, defaultConfigurationYAML)
	return duplicatedContent
}
