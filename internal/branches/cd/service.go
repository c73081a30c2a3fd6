package cd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/branchswitch/internal/execshell"
)

const (
	branchNameRequiredMessageConstant      = "branch name must be provided"
	repositoryMissingMessageConstant       = "repository not configured"
	prompterMissingMessageConstant         = "confirmation prompter not configured"
	indicatorMissingMessageConstant        = "status indicator not configured"
	switchingMessageTemplateConstant       = "Switching to branch %s"
	uncommittedChangesMessageConstant      = "You have uncommitted changes."
	stashQuestionMessageConstant           = "Would you like to stash your changes before switching?"
	stashingMessageConstant                = "Stashing changes..."
	stashedMessageConstant                 = "Changes stashed"
	nothingStashedMessageConstant          = "No local changes to save"
	switchCancelledMessageConstant         = "Branch switch cancelled"
	switchSucceededMessageTemplateConstant = "Successfully switched to branch %s"
	switchFailedMessageTemplateConstant    = "Failed to checkout branch: %s"
	defaultStashMessageConstant            = "Auto-stash before branch switch"
	statusFailedLogMessageConstant         = "working tree status failed"
	promptFailedLogMessageConstant         = "stash confirmation failed; treating as decline"
	stashFailedLogMessageConstant          = "stash failed"
	checkoutFailedLogMessageConstant       = "checkout failed"
	switchCompletedLogMessageConstant      = "branch switch finished"
	logFieldBranchConstant                 = "branch"
	logFieldStateConstant                  = "state"
	logFieldStashedConstant                = "stashed"
)

// State enumerates the terminal states of a branch switch.
type State string

const (
	// StateDone means the work tree now reflects the requested branch.
	StateDone State = "done"
	// StateAborted means the user declined to stash and nothing was changed.
	StateAborted State = "aborted"
	// StateFailed means a status, stash, or checkout invocation failed.
	StateFailed State = "failed"
)

// ErrBranchNameRequired indicates the branch name was empty.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrRepositoryNotConfigured indicates the repository dependency was missing.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrConfirmationPrompterNotConfigured indicates the prompter dependency was missing.
var ErrConfirmationPrompterNotConfigured = errors.New(prompterMissingMessageConstant)

// ErrStatusIndicatorNotConfigured indicates the status indicator factory was missing.
var ErrStatusIndicatorNotConfigured = errors.New(indicatorMissingMessageConstant)

// Repository performs the work tree operations a switch needs.
type Repository interface {
	StatusPorcelain(executionContext context.Context) (string, error)
	StashPush(executionContext context.Context, message string) (bool, error)
	Checkout(executionContext context.Context, branchName string) error
}

// ConfirmationPrompter asks the user a yes/no question.
type ConfirmationPrompter interface {
	Confirm(message string, defaultAnswer bool) (bool, error)
}

// StatusIndicator renders the progress of a single phase.
type StatusIndicator interface {
	SetText(text string)
	Succeed(text string)
	Warn(text string)
	Fail(text string)
}

// StartIndicator begins rendering a new status indicator with text.
type StartIndicator func(text string) StatusIndicator

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Repository     Repository
	Prompter       ConfirmationPrompter
	StartIndicator StartIndicator
	Logger         *zap.Logger
	StashMessage   string
}

// Result captures the outcome of a branch switch.
type Result struct {
	BranchName string
	State      State
	Stashed    bool
	Failure    error
}

// Switched reports whether the switch completed.
func (result Result) Switched() bool {
	return result.State == StateDone
}

// Service switches the work tree to another branch, offering to stash uncommitted changes first.
type Service struct {
	repository     Repository
	prompter       ConfirmationPrompter
	startIndicator StartIndicator
	logger         *zap.Logger
	stashMessage   string
}

// NewService constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrConfirmationPrompterNotConfigured
	}
	if dependencies.StartIndicator == nil {
		return nil, ErrStatusIndicatorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stashMessage := strings.TrimSpace(dependencies.StashMessage)
	if len(stashMessage) == 0 {
		stashMessage = defaultStashMessageConstant
	}

	return &Service{
		repository:     dependencies.Repository,
		prompter:       dependencies.Prompter,
		startIndicator: dependencies.StartIndicator,
		logger:         logger,
		stashMessage:   stashMessage,
	}, nil
}

// Checkout switches to branchName. Failures of the underlying operations are reported
// through the status indicator and recorded in the Result; only invalid input yields an error.
func (service *Service) Checkout(executionContext context.Context, branchName string) (Result, error) {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return Result{}, ErrBranchNameRequired
	}

	result := service.checkout(executionContext, trimmedBranchName)
	service.logger.Debug(
		switchCompletedLogMessageConstant,
		zap.String(logFieldBranchConstant, trimmedBranchName),
		zap.String(logFieldStateConstant, string(result.State)),
		zap.Bool(logFieldStashedConstant, result.Stashed),
	)
	return result, nil
}

func (service *Service) checkout(executionContext context.Context, branchName string) Result {
	result := Result{BranchName: branchName}
	indicator := service.startIndicator(fmt.Sprintf(switchingMessageTemplateConstant, branchName))

	status, statusError := service.repository.StatusPorcelain(executionContext)
	if statusError != nil {
		service.logger.Debug(statusFailedLogMessageConstant, zap.String(logFieldBranchConstant, branchName), zap.Error(statusError))
		return service.fail(indicator, result, statusError)
	}

	if len(strings.TrimSpace(status)) > 0 {
		indicator.Warn(uncommittedChangesMessageConstant)

		shouldStash, promptError := service.prompter.Confirm(stashQuestionMessageConstant, true)
		if promptError != nil {
			service.logger.Debug(promptFailedLogMessageConstant, zap.Error(promptError))
			shouldStash = false
		}
		if !shouldStash {
			indicator.Fail(switchCancelledMessageConstant)
			result.State = StateAborted
			return result
		}

		indicator.SetText(stashingMessageConstant)
		stashed, stashError := service.repository.StashPush(executionContext, service.stashMessage)
		if stashError != nil {
			service.logger.Debug(stashFailedLogMessageConstant, zap.String(logFieldBranchConstant, branchName), zap.Error(stashError))
			return service.fail(indicator, result, stashError)
		}
		if stashed {
			indicator.Succeed(stashedMessageConstant)
			result.Stashed = true
		} else {
			indicator.Warn(nothingStashedMessageConstant)
		}

		indicator = service.startIndicator(fmt.Sprintf(switchingMessageTemplateConstant, branchName))
	}

	if checkoutError := service.repository.Checkout(executionContext, branchName); checkoutError != nil {
		service.logger.Debug(checkoutFailedLogMessageConstant, zap.String(logFieldBranchConstant, branchName), zap.Error(checkoutError))
		return service.fail(indicator, result, checkoutError)
	}

	indicator.Succeed(fmt.Sprintf(switchSucceededMessageTemplateConstant, branchName))
	result.State = StateDone
	return result
}

func (service *Service) fail(indicator StatusIndicator, result Result, failure error) Result {
	indicator.Fail(fmt.Sprintf(switchFailedMessageTemplateConstant, execshell.FailureMessage(failure)))
	result.State = StateFailed
	result.Failure = failure
	return result
}
