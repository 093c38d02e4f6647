// Package utils exposes reusable helpers consumed by multiple commands.
//
// It currently houses the ConfigurationLoader and LoggerFactory abstractions
// that integrate Viper, environment variables, and zap logging for the CLI,
// plus FlushingWriter for promptly visible instruction output.
package utils
