package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

const (
	confirmationFailedTemplateConstant = "confirmation prompt failed: %w"
	defaultYesSuffixConstant           = " (Y/n) "
	defaultNoSuffixConstant            = " (y/N) "
)

// SurveyConfirmationPrompter asks yes/no questions with survey on a terminal.
type SurveyConfirmationPrompter struct {
	input       terminal.FileReader
	output      terminal.FileWriter
	errorOutput io.Writer
}

// NewSurveyConfirmationPrompter constructs a prompter bound to the given terminal streams.
func NewSurveyConfirmationPrompter(input terminal.FileReader, output terminal.FileWriter, errorOutput io.Writer) *SurveyConfirmationPrompter {
	return &SurveyConfirmationPrompter{input: input, output: output, errorOutput: errorOutput}
}

// Confirm asks message and returns the answer. An interrupt yields ErrPromptInterrupted.
func (prompter *SurveyConfirmationPrompter) Confirm(message string, defaultAnswer bool) (bool, error) {
	answer := defaultAnswer
	question := &survey.Confirm{Message: message, Default: defaultAnswer}
	if askError := survey.AskOne(question, &answer, survey.WithStdio(prompter.input, prompter.output, prompter.errorOutput)); askError != nil {
		if errors.Is(askError, terminal.InterruptErr) {
			return false, ErrPromptInterrupted
		}
		return false, fmt.Errorf(confirmationFailedTemplateConstant, askError)
	}
	return answer, nil
}

// IOConfirmationPrompter reads confirmation responses from an io.Reader.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter constructs a prompter from the provided reader and writer.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the question and interprets y/yes and n/no; anything else takes the default.
// End of input without an answer counts as an interruption.
func (prompter *IOConfirmationPrompter) Confirm(message string, defaultAnswer bool) (bool, error) {
	suffix := defaultNoSuffixConstant
	if defaultAnswer {
		suffix = defaultYesSuffixConstant
	}
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, message+suffix); writeError != nil {
			return false, writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return false, readError
	}
	if readError == io.EOF && len(response) == 0 {
		return false, ErrPromptInterrupted
	}

	switch strings.TrimSpace(strings.ToLower(response)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return defaultAnswer, nil
	}
}
