// Package picker turns recent branches into a selection menu and resolves the user's choice.
package picker

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/branchswitch/internal/branches"
	"github.com/temirov/branchswitch/internal/ui"
)

const (
	// SelectMessage is the question shown above the branch menu.
	SelectMessage = "Select a branch to checkout:"
	// PageSize is the number of menu rows visible at once.
	PageSize = 10
	// CancelLabel labels the menu entry that dismisses the menu.
	CancelLabel = "Cancel"

	branchLabelTemplateConstant      = "%-30s"
	prompterMissingMessageConstant   = "select prompter not configured"
	selectionFailedTemplateConstant  = "branch selection failed: %w"
	invalidSelectionTemplateConstant = "branch selection returned invalid index %d"
)

// ErrSelectPrompterNotConfigured indicates the picker was built without a prompter.
var ErrSelectPrompterNotConfigured = errors.New(prompterMissingMessageConstant)

// SelectionChoice is one menu entry. Separator entries are never selectable and the
// Cancel entry carries no branch.
type SelectionChoice struct {
	Branch    string
	Label     string
	Detail    string
	Separator bool
	Cancel    bool
}

// Selection is the user's answer: a branch, or cancellation.
type Selection struct {
	Branch    string
	Cancelled bool
}

// SelectPrompter presents a menu and returns the index of the chosen option.
type SelectPrompter interface {
	Select(executionContext context.Context, prompt ui.SelectPrompt) (int, error)
}

// BuildChoices lists summaries in their given order, followed by a separator and the Cancel entry.
func BuildChoices(summaries []branches.BranchSummary) []SelectionChoice {
	choices := make([]SelectionChoice, 0, len(summaries)+2)
	for _, summary := range summaries {
		choices = append(choices, SelectionChoice{
			Branch: summary.Name,
			Label:  fmt.Sprintf(branchLabelTemplateConstant, summary.Name),
			Detail: summary.RelativeTime,
		})
	}
	choices = append(choices, SelectionChoice{Separator: true})
	choices = append(choices, SelectionChoice{Label: CancelLabel, Cancel: true})
	return choices
}

// Picker asks the user which branch to switch to.
type Picker struct {
	prompter SelectPrompter
}

// NewPicker constructs a Picker.
func NewPicker(prompter SelectPrompter) (*Picker, error) {
	if prompter == nil {
		return nil, ErrSelectPrompterNotConfigured
	}
	return &Picker{prompter: prompter}, nil
}

// Pick shows the menu for summaries. Dismissing the menu is the same as choosing Cancel.
func (picker *Picker) Pick(executionContext context.Context, summaries []branches.BranchSummary) (Selection, error) {
	choices := BuildChoices(summaries)
	options := make([]ui.MenuOption, 0, len(choices))
	for _, choice := range choices {
		options = append(options, ui.MenuOption{
			Title:     choice.Label,
			Detail:    choice.Detail,
			Separator: choice.Separator,
			Muted:     choice.Cancel,
		})
	}

	selectedIndex, selectError := picker.prompter.Select(executionContext, ui.SelectPrompt{
		Message:  SelectMessage,
		Options:  options,
		PageSize: PageSize,
	})
	if selectError != nil {
		if errors.Is(selectError, ui.ErrPromptInterrupted) {
			return Selection{Cancelled: true}, nil
		}
		return Selection{}, fmt.Errorf(selectionFailedTemplateConstant, selectError)
	}

	if selectedIndex < 0 || selectedIndex >= len(choices) || choices[selectedIndex].Separator {
		return Selection{}, fmt.Errorf(invalidSelectionTemplateConstant, selectedIndex)
	}

	chosen := choices[selectedIndex]
	if chosen.Cancel {
		return Selection{Cancelled: true}, nil
	}
	return Selection{Branch: chosen.Branch}, nil
}
