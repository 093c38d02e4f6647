// Package cli constructs the gitbundle command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives.
package cli
