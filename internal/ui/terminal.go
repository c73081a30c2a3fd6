package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorMode controls whether styled output carries colour.
type ColorMode string

const (
	// ColorModeAuto colours output only when it is written to a terminal.
	ColorModeAuto ColorMode = "auto"
	// ColorModeAlways colours output regardless of the destination.
	ColorModeAlways ColorMode = "always"
	// ColorModeNever writes plain text.
	ColorModeNever ColorMode = "never"
)

// ParseColorMode normalizes a configured colour mode, falling back to ColorModeAuto.
func ParseColorMode(value string) ColorMode {
	switch ColorMode(strings.ToLower(strings.TrimSpace(value))) {
	case ColorModeAlways:
		return ColorModeAlways
	case ColorModeNever:
		return ColorModeNever
	default:
		return ColorModeAuto
	}
}

type fileDescriptor interface {
	Fd() uintptr
}

// IsTerminal reports whether stream is attached to an interactive terminal.
func IsTerminal(stream any) bool {
	descriptor, ok := stream.(fileDescriptor)
	if !ok {
		return false
	}
	return isatty.IsTerminal(descriptor.Fd()) || isatty.IsCygwinTerminal(descriptor.Fd())
}

// NewRenderer builds a lipgloss renderer for writer honouring mode.
func NewRenderer(writer io.Writer, mode ColorMode) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(writer)
	switch mode {
	case ColorModeNever:
		renderer.SetColorProfile(termenv.Ascii)
	case ColorModeAlways:
		if renderer.ColorProfile() == termenv.Ascii {
			renderer.SetColorProfile(termenv.ANSI256)
		}
	}
	return renderer
}

// Palette holds the styles shared by the reporter, menu and status indicator.
type Palette struct {
	Title   lipgloss.Style
	Branch  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Failure lipgloss.Style
	Cursor  lipgloss.Style
	Prompt  lipgloss.Style
}

// NewPalette derives the switcher styles from renderer.
func NewPalette(renderer *lipgloss.Renderer) Palette {
	return Palette{
		Title:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Branch:  renderer.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:   renderer.NewStyle().Foreground(lipgloss.Color("8")),
		Success: renderer.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: renderer.NewStyle().Foreground(lipgloss.Color("11")),
		Failure: renderer.NewStyle().Foreground(lipgloss.Color("9")),
		Cursor:  renderer.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Prompt:  renderer.NewStyle().Bold(true),
	}
}
