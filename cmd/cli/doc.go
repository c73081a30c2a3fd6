// Package cli constructs the branch-switch command-line interface, wiring the
// Cobra root command, configuration loader and structured logging around the
// interactive branch switch workflow.
package cli
