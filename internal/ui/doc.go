// Package ui renders the branch switcher's terminal presentation.
//
// It provides a styled console reporter, an animated status indicator, the
// branch selection menu and the stash confirmation prompt. Each interactive
// piece has a line-oriented fallback used when the terminal is not interactive.
// Git invocations can also be narrated through a human-readable zap logger.
package ui
