package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/branchswitch/internal/branches"
	"github.com/temirov/branchswitch/internal/branches/cd"
	"github.com/temirov/branchswitch/internal/branches/picker"
)

const (
	// TitleMessage is the banner printed at the start of every run.
	TitleMessage = "🌿 Git Branch Switcher"
	// NotRepositoryMessage reports a working directory outside any repository.
	NotRepositoryMessage = "Error: Not in a git repository!"
	// NotRepositoryHintMessage follows NotRepositoryMessage.
	NotRepositoryHintMessage = "Please run this command from within a git repository."
	// NoBranchesMessage reports that there is nothing to switch to.
	NoBranchesMessage = "No other branches found in this repository."
	// CancelledMessage acknowledges that the user dismissed the menu.
	CancelledMessage = "Operation cancelled."

	fatalErrorTemplateConstant           = "Fatal error: %s"
	workflowDependenciesMessageConstant  = "workflow requires probe, picker, switcher, and reporter dependencies"
	workflowFinishedLogMessageConstant   = "workflow finished"
	workflowUnexpectedLogMessageConstant = "workflow failed unexpectedly"
	logFieldReasonConstant               = "reason"
	logFieldExitCodeConstant             = "exit_code"
	logFieldBranchConstant               = "branch"
	logFieldCandidateCountConstant       = "candidate_count"
	candidatesResolvedLogMessageConstant = "candidate branches resolved"
	defaultBranchLimitConstant           = branches.DefaultBranchLimit
)

// ErrDependenciesNotConfigured indicates a required collaborator was missing.
var ErrDependenciesNotConfigured = errors.New(workflowDependenciesMessageConstant)

// Reason explains why a run ended.
type Reason string

const (
	// ReasonSwitched means the work tree now reflects the chosen branch.
	ReasonSwitched Reason = "switched"
	// ReasonStashDeclined means the user kept their uncommitted changes and stayed put.
	ReasonStashDeclined Reason = "stash_declined"
	// ReasonSwitchFailed means a stash or checkout invocation failed.
	ReasonSwitchFailed Reason = "switch_failed"
	// ReasonNotRepository means the working directory is outside any repository.
	ReasonNotRepository Reason = "not_repository"
	// ReasonNoBranches means no other branch was available.
	ReasonNoBranches Reason = "no_branches"
	// ReasonCancelled means the user dismissed the menu.
	ReasonCancelled Reason = "cancelled"
	// ReasonUnexpected means an unanticipated error stopped the run.
	ReasonUnexpected Reason = "unexpected_error"
)

// Outcome is the process-level result of a run.
type Outcome struct {
	ExitCode int
	Reason   Reason
	Branch   string
}

// RepositoryProbe answers repository state questions.
type RepositoryProbe interface {
	IsRepository(executionContext context.Context) bool
	CurrentBranch(executionContext context.Context) (string, bool)
	RecentBranches(executionContext context.Context, limit int) []branches.BranchSummary
}

// BranchPicker asks the user which branch to switch to.
type BranchPicker interface {
	Pick(executionContext context.Context, summaries []branches.BranchSummary) (picker.Selection, error)
}

// BranchSwitcher performs the switch.
type BranchSwitcher interface {
	Checkout(executionContext context.Context, branchName string) (cd.Result, error)
}

// Reporter shows run progress to the user.
type Reporter interface {
	Title(message string)
	CurrentBranch(branchName string)
	Warning(message string)
	Hint(message string)
	Notice(message string)
	Error(message string)
}

// Dependencies configures the collaborators of a Workflow.
type Dependencies struct {
	Probe       RepositoryProbe
	Picker      BranchPicker
	Switcher    BranchSwitcher
	Reporter    Reporter
	Logger      *zap.Logger
	BranchLimit int
}

// Workflow sequences probing, picking and switching.
type Workflow struct {
	dependencies Dependencies
}

// NewWorkflow validates dependencies and constructs a Workflow.
func NewWorkflow(dependencies Dependencies) (*Workflow, error) {
	if dependencies.Probe == nil || dependencies.Picker == nil || dependencies.Switcher == nil || dependencies.Reporter == nil {
		return nil, ErrDependenciesNotConfigured
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.BranchLimit <= 0 {
		dependencies.BranchLimit = defaultBranchLimitConstant
	}
	return &Workflow{dependencies: dependencies}, nil
}

// Run performs one interactive switch. Every outcome has already been reported to the user
// when Run returns.
func (workflow *Workflow) Run(executionContext context.Context) Outcome {
	outcome := workflow.run(executionContext)
	workflow.dependencies.Logger.Debug(
		workflowFinishedLogMessageConstant,
		zap.String(logFieldReasonConstant, string(outcome.Reason)),
		zap.Int(logFieldExitCodeConstant, outcome.ExitCode),
		zap.String(logFieldBranchConstant, outcome.Branch),
	)
	return outcome
}

func (workflow *Workflow) run(executionContext context.Context) Outcome {
	reporter := workflow.dependencies.Reporter
	reporter.Title(TitleMessage)

	if !workflow.dependencies.Probe.IsRepository(executionContext) {
		reporter.Error(NotRepositoryMessage)
		reporter.Hint(NotRepositoryHintMessage)
		return Outcome{ExitCode: 1, Reason: ReasonNotRepository}
	}

	if currentBranch, available := workflow.dependencies.Probe.CurrentBranch(executionContext); available {
		reporter.CurrentBranch(currentBranch)
	}

	candidates := workflow.dependencies.Probe.RecentBranches(executionContext, workflow.dependencies.BranchLimit)
	workflow.dependencies.Logger.Debug(candidatesResolvedLogMessageConstant, zap.Int(logFieldCandidateCountConstant, len(candidates)))
	if len(candidates) == 0 {
		reporter.Warning(NoBranchesMessage)
		return Outcome{ExitCode: 0, Reason: ReasonNoBranches}
	}

	selection, pickError := workflow.dependencies.Picker.Pick(executionContext, candidates)
	if pickError != nil {
		return workflow.unexpected(pickError)
	}
	if selection.Cancelled {
		reporter.Notice(CancelledMessage)
		return Outcome{ExitCode: 0, Reason: ReasonCancelled}
	}

	result, switchError := workflow.dependencies.Switcher.Checkout(executionContext, selection.Branch)
	if switchError != nil {
		return workflow.unexpected(switchError)
	}

	switch result.State {
	case cd.StateDone:
		return Outcome{ExitCode: 0, Reason: ReasonSwitched, Branch: result.BranchName}
	case cd.StateAborted:
		return Outcome{ExitCode: 0, Reason: ReasonStashDeclined, Branch: result.BranchName}
	default:
		return Outcome{ExitCode: 1, Reason: ReasonSwitchFailed, Branch: result.BranchName}
	}
}

func (workflow *Workflow) unexpected(failure error) Outcome {
	workflow.dependencies.Logger.Debug(workflowUnexpectedLogMessageConstant, zap.Error(failure))
	workflow.dependencies.Reporter.Error(fmt.Sprintf(fatalErrorTemplateConstant, failure.Error()))
	return Outcome{ExitCode: 1, Reason: ReasonUnexpected}
}
