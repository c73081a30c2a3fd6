package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/branchswitch/internal/utils"
)

const (
	successSymbolConstant      = "✔"
	warningSymbolConstant      = "⚠"
	failureSymbolConstant      = "✖"
	pendingSymbolConstant      = "-"
	statusLineTemplateConstant = "%s %s"
	lineBreakConstant          = "\n"
)

// StatusWriter starts status indicators on a single output stream.
type StatusWriter struct {
	output   io.Writer
	terminal io.Writer
	palette  Palette
	animate  bool
}

// NewStatusWriter constructs a StatusWriter. Animation is only used when animate is true;
// otherwise every state change is written as its own line.
func NewStatusWriter(output io.Writer, palette Palette, animate bool) *StatusWriter {
	return &StatusWriter{
		output:   utils.NewFlushingWriter(output),
		terminal: output,
		palette:  palette,
		animate:  animate,
	}
}

// Start begins a new indicator showing text.
func (writer *StatusWriter) Start(text string) *StatusIndicator {
	indicator := &StatusIndicator{writer: writer, text: text}
	if writer.animate {
		indicator.resume()
		return indicator
	}
	writer.writeLine(pendingSymbolConstant, text)
	return indicator
}

func (writer *StatusWriter) writeLine(symbol string, text string) {
	_, _ = fmt.Fprintf(writer.output, statusLineTemplateConstant+lineBreakConstant, symbol, text)
}

// renderLines styles each line of text on its own so multi-line git output is not padded into a block.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, lineBreakConstant)
	for index, line := range lines {
		lines[index] = style.Render(line)
	}
	return strings.Join(lines, lineBreakConstant)
}

type statusTextMsg string

type statusStopMsg struct{}

type statusModel struct {
	spinner  spinner.Model
	text     string
	stopping bool
}

func newStatusModel(text string, palette Palette) statusModel {
	spinnerModel := spinner.New()
	spinnerModel.Spinner = spinner.Dot
	spinnerModel.Style = palette.Branch
	return statusModel{spinner: spinnerModel, text: text}
}

func (model statusModel) Init() tea.Cmd {
	return model.spinner.Tick
}

func (model statusModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case statusTextMsg:
		model.text = string(typedMessage)
		return model, nil
	case statusStopMsg:
		model.stopping = true
		return model, tea.Quit
	case spinner.TickMsg:
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(typedMessage)
		return model, command
	}
	return model, nil
}

func (model statusModel) View() string {
	if model.stopping {
		return ""
	}
	return fmt.Sprintf(statusLineTemplateConstant, model.spinner.View(), model.text)
}

// StatusIndicator is a single spinner line. Terminal states stop it; SetText on a stopped
// indicator starts it again.
type StatusIndicator struct {
	writer   *StatusWriter
	mutex    sync.Mutex
	text     string
	program  *tea.Program
	finished chan struct{}
}

// SetText replaces the indicator text.
func (indicator *StatusIndicator) SetText(text string) {
	indicator.mutex.Lock()
	indicator.text = text
	program := indicator.program
	indicator.mutex.Unlock()

	if program != nil {
		program.Send(statusTextMsg(text))
		return
	}
	if indicator.writer.animate {
		indicator.resume()
		return
	}
	indicator.writer.writeLine(pendingSymbolConstant, text)
}

// Succeed stops the indicator with a success mark.
func (indicator *StatusIndicator) Succeed(text string) {
	palette := indicator.writer.palette
	indicator.finish(palette.Success.Render(successSymbolConstant), renderLines(palette.Success, text))
}

// Warn stops the indicator with a warning mark.
func (indicator *StatusIndicator) Warn(text string) {
	palette := indicator.writer.palette
	indicator.finish(palette.Warning.Render(warningSymbolConstant), renderLines(palette.Warning, text))
}

// Fail stops the indicator with a failure mark.
func (indicator *StatusIndicator) Fail(text string) {
	palette := indicator.writer.palette
	indicator.finish(palette.Failure.Render(failureSymbolConstant), renderLines(palette.Failure, text))
}

// resume runs the spinner program until finish. Input is not read and signals keep their default handling.
func (indicator *StatusIndicator) resume() {
	indicator.mutex.Lock()
	defer indicator.mutex.Unlock()
	if indicator.program != nil {
		return
	}

	program := tea.NewProgram(
		newStatusModel(indicator.text, indicator.writer.palette),
		tea.WithInput(nil),
		tea.WithOutput(indicator.writer.terminal),
		tea.WithoutSignalHandler(),
	)
	finished := make(chan struct{})
	indicator.program = program
	indicator.finished = finished

	go func() {
		defer close(finished)
		_, _ = program.Run()
	}()
}

func (indicator *StatusIndicator) finish(symbol string, text string) {
	indicator.mutex.Lock()
	program := indicator.program
	finished := indicator.finished
	indicator.program = nil
	indicator.finished = nil
	indicator.mutex.Unlock()

	if program != nil {
		program.Send(statusStopMsg{})
		<-finished
	}
	indicator.writer.writeLine(symbol, text)
}
