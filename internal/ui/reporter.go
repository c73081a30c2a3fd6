package ui

import (
	"fmt"
	"io"

	"github.com/temirov/branchswitch/internal/utils"
)

const (
	currentBranchLabelConstant = "Current branch: "
	blankLineConstant          = "\n"
)

// ConsoleReporter writes user-facing messages. Errors go to the error stream, everything else to output.
type ConsoleReporter struct {
	output      io.Writer
	errorOutput io.Writer
	palette     Palette
}

// NewConsoleReporter constructs a ConsoleReporter whose styles come from palette.
func NewConsoleReporter(output io.Writer, errorOutput io.Writer, palette Palette) *ConsoleReporter {
	return &ConsoleReporter{
		output:      utils.NewFlushingWriter(output),
		errorOutput: utils.NewFlushingWriter(errorOutput),
		palette:     palette,
	}
}

// Title prints the banner surrounded by blank lines.
func (reporter *ConsoleReporter) Title(message string) {
	reporter.writeLine(reporter.output, blankLineConstant+reporter.palette.Title.Render(message)+blankLineConstant)
}

// CurrentBranch prints the checked-out branch followed by a blank line.
func (reporter *ConsoleReporter) CurrentBranch(branchName string) {
	reporter.writeLine(reporter.output, reporter.palette.Muted.Render(currentBranchLabelConstant)+reporter.palette.Branch.Render(branchName)+blankLineConstant)
}

// Warning prints an attention-worthy message.
func (reporter *ConsoleReporter) Warning(message string) {
	reporter.writeLine(reporter.output, renderLines(reporter.palette.Warning, message))
}

// Hint prints guidance that follows an error.
func (reporter *ConsoleReporter) Hint(message string) {
	reporter.writeLine(reporter.output, renderLines(reporter.palette.Warning, message))
}

// Notice prints a de-emphasized message preceded by a blank line.
func (reporter *ConsoleReporter) Notice(message string) {
	reporter.writeLine(reporter.output, blankLineConstant+renderLines(reporter.palette.Muted, message))
}

// Error prints message to the error stream.
func (reporter *ConsoleReporter) Error(message string) {
	reporter.writeLine(reporter.errorOutput, renderLines(reporter.palette.Failure, message))
}

func (reporter *ConsoleReporter) writeLine(writer io.Writer, line string) {
	_, _ = fmt.Fprintln(writer, line)
}
