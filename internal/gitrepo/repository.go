package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/branchswitch/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant        = "git executor not configured"
	branchNameRequiredMessageConstant        = "branch name must be provided"
	stashMessageRequiredMessageConstant      = "stash message must be provided"
	workTreeCheckFailureTemplateConstant     = "failed to check work tree: %w"
	currentBranchFailureTemplateConstant     = "failed to read current branch: %w"
	listBranchesFailureTemplateConstant      = "failed to list branches: %w"
	statusFailureTemplateConstant            = "failed to read working tree status: %w"
	stashFailureTemplateConstant             = "failed to stash changes: %w"
	checkoutFailureTemplateConstant          = "failed to checkout branch %q: %w"
	gitRevParseSubcommandConstant            = "rev-parse"
	gitInsideWorkTreeFlagConstant            = "--is-inside-work-tree"
	gitBranchSubcommandConstant              = "branch"
	gitShowCurrentFlagConstant               = "--show-current"
	gitForEachRefSubcommandConstant          = "for-each-ref"
	gitSortByCommitterDateFlagConstant       = "--sort=-committerdate"
	gitLocalBranchNamespaceConstant          = "refs/heads/"
	gitStatusSubcommandConstant              = "status"
	gitPorcelainFlagConstant                 = "--porcelain"
	gitStashSubcommandConstant               = "stash"
	gitStashPushSubcommandConstant           = "push"
	gitMessageFlagConstant                   = "-m"
	gitCheckoutSubcommandConstant            = "checkout"
	gitInsideWorkTreeAffirmativeConstant     = "true"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant   = "0"
	gitNoLocalChangesOutputConstant          = "No local changes to save"
	lineSeparatorConstant                    = "\n"
)

// BranchFieldSeparator separates the fields of each line returned by ListBranchesByCommitDate.
const BranchFieldSeparator = "|"

// BranchFormat is the for-each-ref format producing name, relative commit time, and unix commit time.
const BranchFormat = "%(refname:short)" + BranchFieldSeparator + "%(committerdate:relative)" + BranchFieldSeparator + "%(committerdate:unix)"

// ErrGitExecutorNotConfigured indicates the manager was built without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrBranchNameRequired indicates a checkout was requested without a branch.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrStashMessageRequired indicates a stash was requested without a message.
var ErrStashMessageRequired = errors.New(stashMessageRequiredMessageConstant)

// GitExecutor runs git invocations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager runs the git operations required by the switcher inside a single working directory.
// An empty working directory means the process working directory.
type RepositoryManager struct {
	executor         GitExecutor
	workingDirectory string
}

// NewRepositoryManager constructs a RepositoryManager bound to workingDirectory.
func NewRepositoryManager(executor GitExecutor, workingDirectory string) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor, workingDirectory: strings.TrimSpace(workingDirectory)}, nil
}

// IsInsideWorkTree reports whether the working directory belongs to a git work tree.
// A non-zero exit status is a negative answer, not an error.
func (manager *RepositoryManager) IsInsideWorkTree(executionContext context.Context) (bool, error) {
	result, executionError := manager.run(executionContext, gitRevParseSubcommandConstant, gitInsideWorkTreeFlagConstant)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, fmt.Errorf(workTreeCheckFailureTemplateConstant, executionError)
	}
	return strings.TrimSpace(result.StandardOutput) == gitInsideWorkTreeAffirmativeConstant, nil
}

// CurrentBranch returns the checked-out branch name, or an empty string in a detached state.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context) (string, error) {
	result, executionError := manager.run(executionContext, gitBranchSubcommandConstant, gitShowCurrentFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(currentBranchFailureTemplateConstant, executionError)
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// ListBranchesByCommitDate returns one BranchFormat line per local branch, most recently committed first.
func (manager *RepositoryManager) ListBranchesByCommitDate(executionContext context.Context) ([]string, error) {
	result, executionError := manager.run(
		executionContext,
		gitForEachRefSubcommandConstant,
		gitSortByCommitterDateFlagConstant,
		"--format="+BranchFormat,
		gitLocalBranchNamespaceConstant,
	)
	if executionError != nil {
		return nil, fmt.Errorf(listBranchesFailureTemplateConstant, executionError)
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(result.StandardOutput, lineSeparatorConstant) {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines, nil
}

// StatusPorcelain returns the machine-readable working tree status; empty output means clean.
func (manager *RepositoryManager) StatusPorcelain(executionContext context.Context) (string, error) {
	result, executionError := manager.run(executionContext, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(statusFailureTemplateConstant, executionError)
	}
	return result.StandardOutput, nil
}

// StashPush records uncommitted changes in a new stash entry labelled with message.
// It reports false when git found nothing it would stash, such as a tree with only untracked files.
func (manager *RepositoryManager) StashPush(executionContext context.Context, message string) (bool, error) {
	trimmedMessage := strings.TrimSpace(message)
	if len(trimmedMessage) == 0 {
		return false, ErrStashMessageRequired
	}
	result, executionError := manager.run(executionContext, gitStashSubcommandConstant, gitStashPushSubcommandConstant, gitMessageFlagConstant, trimmedMessage)
	if executionError != nil {
		return false, fmt.Errorf(stashFailureTemplateConstant, executionError)
	}
	nothingStashed := strings.Contains(result.StandardOutput, gitNoLocalChangesOutputConstant) ||
		strings.Contains(result.StandardError, gitNoLocalChangesOutputConstant)
	return !nothingStashed, nil
}

// Checkout switches the work tree to branchName. Output is captured rather than echoed.
func (manager *RepositoryManager) Checkout(executionContext context.Context, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}
	if _, executionError := manager.run(executionContext, gitCheckoutSubcommandConstant, trimmedBranchName); executionError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, trimmedBranchName, executionError)
	}
	return nil
}

func (manager *RepositoryManager) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     manager.workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptDisabledValueConstant},
	})
}
