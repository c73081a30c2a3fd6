package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	noSelectableOptionsMessageConstant = "no selectable options"
	promptInterruptedMessageConstant   = "prompt interrupted"
	unexpectedModelMessageConstant     = "unexpected selection model"
	selectionFailedTemplateConstant    = "selection prompt failed: %w"
	separatorGlyphConstant             = "──────────────"
	cursorGlyphConstant                = "❯"
	cursorPlaceholderConstant          = " "
	questionGlyphConstant              = "?"
	menuHelpConstant                   = "(Use arrow keys, Enter to select, Esc to cancel)"
	lineOptionTemplateConstant         = "  %d) %s\n"
	lineSeparatorTemplateConstant      = "     %s\n"
	lineAnswerPromptTemplateConstant   = "Answer (1-%d): "
	lineInvalidAnswerTemplateConstant  = "Please enter a number between 1 and %d.\n"
	defaultPageSizeConstant            = 10
)

// ErrPromptInterrupted indicates the user dismissed a prompt without answering.
var ErrPromptInterrupted = errors.New(promptInterruptedMessageConstant)

// ErrNoSelectableOptions indicates a menu had nothing the user could choose.
var ErrNoSelectableOptions = errors.New(noSelectableOptionsMessageConstant)

// MenuOption is one row of a selection menu. Separators are shown but never selectable.
type MenuOption struct {
	Title     string
	Detail    string
	Separator bool
	Muted     bool
}

// SelectPrompt describes a single-choice menu.
type SelectPrompt struct {
	Message  string
	Options  []MenuOption
	PageSize int
}

func selectableIndexes(options []MenuOption) []int {
	indexes := make([]int, 0, len(options))
	for index, option := range options {
		if !option.Separator {
			indexes = append(indexes, index)
		}
	}
	return indexes
}

type selectModel struct {
	prompt   SelectPrompt
	palette  Palette
	cursor   int
	offset   int
	selected int
	done     bool
	err      error
}

func newSelectModel(prompt SelectPrompt, palette Palette) selectModel {
	if prompt.PageSize <= 0 {
		prompt.PageSize = defaultPageSizeConstant
	}
	model := selectModel{prompt: prompt, palette: palette, selected: -1}
	if selectable := selectableIndexes(prompt.Options); len(selectable) > 0 {
		model.cursor = selectable[0]
	}
	return model
}

func (model selectModel) Init() tea.Cmd {
	return nil
}

func (model selectModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	keyMessage, ok := message.(tea.KeyMsg)
	if !ok {
		return model, nil
	}

	switch keyMessage.Type {
	case tea.KeyEnter:
		model.selected = model.cursor
		model.done = true
		return model, tea.Quit
	case tea.KeyCtrlC, tea.KeyEsc:
		model.err = ErrPromptInterrupted
		model.done = true
		return model, tea.Quit
	case tea.KeyUp, tea.KeyShiftTab:
		model.moveCursor(-1)
	case tea.KeyDown, tea.KeyTab:
		model.moveCursor(1)
	case tea.KeyRunes:
		switch string(keyMessage.Runes) {
		case "k":
			model.moveCursor(-1)
		case "j":
			model.moveCursor(1)
		}
	}
	return model, nil
}

// moveCursor steps over separators and wraps around the ends of the list.
func (model *selectModel) moveCursor(step int) {
	optionCount := len(model.prompt.Options)
	if optionCount == 0 {
		return
	}
	candidate := model.cursor
	for range model.prompt.Options {
		candidate = (candidate + step + optionCount) % optionCount
		if !model.prompt.Options[candidate].Separator {
			model.cursor = candidate
			break
		}
	}

	if model.cursor < model.offset {
		model.offset = model.cursor
	}
	if model.cursor >= model.offset+model.prompt.PageSize {
		model.offset = model.cursor - model.prompt.PageSize + 1
	}
}

func (model selectModel) View() string {
	var builder strings.Builder
	builder.WriteString(model.palette.Success.Render(questionGlyphConstant) + " " + model.palette.Prompt.Render(model.prompt.Message))

	if model.done {
		if model.err == nil && model.selected >= 0 {
			builder.WriteString(" " + model.palette.Branch.Render(strings.TrimSpace(model.prompt.Options[model.selected].Title)))
		}
		builder.WriteString("\n")
		return builder.String()
	}

	builder.WriteString(" " + model.palette.Muted.Render(menuHelpConstant) + "\n")
	end := model.offset + model.prompt.PageSize
	if end > len(model.prompt.Options) {
		end = len(model.prompt.Options)
	}
	for index := model.offset; index < end; index++ {
		builder.WriteString(model.renderOption(index))
		builder.WriteString("\n")
	}
	return builder.String()
}

func (model selectModel) renderOption(index int) string {
	option := model.prompt.Options[index]
	if option.Separator {
		return "  " + model.palette.Muted.Render(separatorGlyphConstant)
	}

	cursor := cursorPlaceholderConstant
	title := model.palette.Branch.Render(option.Title)
	if option.Muted {
		title = model.palette.Muted.Render(option.Title)
	}
	if index == model.cursor {
		cursor = model.palette.Cursor.Render(cursorGlyphConstant)
		title = model.palette.Cursor.Render(option.Title)
	}

	line := cursor + " " + title
	if len(option.Detail) > 0 {
		line += " " + model.palette.Muted.Render(option.Detail)
	}
	return line
}

// TerminalSelectPrompter renders menus with bubbletea.
type TerminalSelectPrompter struct {
	input   io.Reader
	output  io.Writer
	palette Palette
}

// NewTerminalSelectPrompter constructs a prompter reading keys from input and drawing on output.
func NewTerminalSelectPrompter(input io.Reader, output io.Writer, palette Palette) *TerminalSelectPrompter {
	return &TerminalSelectPrompter{input: input, output: output, palette: palette}
}

// Select shows prompt and returns the index of the chosen option.
func (prompter *TerminalSelectPrompter) Select(executionContext context.Context, prompt SelectPrompt) (int, error) {
	if len(selectableIndexes(prompt.Options)) == 0 {
		return -1, ErrNoSelectableOptions
	}

	program := tea.NewProgram(
		newSelectModel(prompt, prompter.palette),
		tea.WithContext(executionContext),
		tea.WithInput(prompter.input),
		tea.WithOutput(prompter.output),
	)
	finalModel, runError := program.Run()
	if runError != nil {
		if errors.Is(runError, tea.ErrInterrupted) {
			return -1, ErrPromptInterrupted
		}
		return -1, fmt.Errorf(selectionFailedTemplateConstant, runError)
	}

	model, ok := finalModel.(selectModel)
	if !ok {
		return -1, errors.New(unexpectedModelMessageConstant)
	}
	if model.err != nil {
		return -1, model.err
	}
	return model.selected, nil
}

// LineSelectPrompter asks for a numbered choice on plain streams.
type LineSelectPrompter struct {
	reader  *bufio.Reader
	writer  io.Writer
	palette Palette
}

// NewLineSelectPrompter constructs a prompter from the provided reader and writer.
func NewLineSelectPrompter(input io.Reader, output io.Writer, palette Palette) *LineSelectPrompter {
	return &LineSelectPrompter{reader: bufio.NewReader(input), writer: output, palette: palette}
}

// Select lists the options, numbering only selectable ones, and re-asks until a valid number
// is entered. End of input counts as an interruption.
func (prompter *LineSelectPrompter) Select(_ context.Context, prompt SelectPrompt) (int, error) {
	selectable := selectableIndexes(prompt.Options)
	if len(selectable) == 0 {
		return -1, ErrNoSelectableOptions
	}

	writer := prompter.writer
	if writer == nil {
		writer = io.Discard
	}

	_, _ = fmt.Fprintln(writer, prompter.palette.Success.Render(questionGlyphConstant)+" "+prompter.palette.Prompt.Render(prompt.Message))
	number := 0
	for _, option := range prompt.Options {
		if option.Separator {
			_, _ = fmt.Fprintf(writer, lineSeparatorTemplateConstant, prompter.palette.Muted.Render(separatorGlyphConstant))
			continue
		}
		number++
		label := option.Title
		if len(option.Detail) > 0 {
			label += " " + option.Detail
		}
		_, _ = fmt.Fprintf(writer, lineOptionTemplateConstant, number, label)
	}

	for {
		_, _ = fmt.Fprintf(writer, lineAnswerPromptTemplateConstant, len(selectable))
		response, readError := prompter.reader.ReadString('\n')
		if readError != nil && readError != io.EOF {
			return -1, readError
		}

		choice, parseError := strconv.Atoi(strings.TrimSpace(response))
		if parseError == nil && choice >= 1 && choice <= len(selectable) {
			return selectable[choice-1], nil
		}
		if readError == io.EOF {
			return -1, ErrPromptInterrupted
		}
		_, _ = fmt.Fprintf(writer, lineInvalidAnswerTemplateConstant, len(selectable))
	}
}
