package cd_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/branchswitch/internal/branches/cd"
	"github.com/temirov/branchswitch/internal/execshell"
)

const (
	statusOperation   = "status"
	stashOperation    = "stash"
	checkoutOperation = "checkout"
)

type recordingRepository struct {
	operations    []string
	status        string
	statusError   error
	stashError    error
	stashEmpty    bool
	checkoutError error
	stashMessages []string
	checkedOut    []string
}

func (repository *recordingRepository) StatusPorcelain(context.Context) (string, error) {
	repository.operations = append(repository.operations, statusOperation)
	return repository.status, repository.statusError
}

func (repository *recordingRepository) StashPush(_ context.Context, message string) (bool, error) {
	repository.operations = append(repository.operations, stashOperation)
	repository.stashMessages = append(repository.stashMessages, message)
	if repository.stashError != nil {
		return false, repository.stashError
	}
	return !repository.stashEmpty, nil
}

func (repository *recordingRepository) Checkout(_ context.Context, branchName string) error {
	repository.operations = append(repository.operations, checkoutOperation)
	repository.checkedOut = append(repository.checkedOut, branchName)
	return repository.checkoutError
}

type scriptedPrompter struct {
	answer    bool
	err       error
	questions []string
	defaults  []bool
}

func (prompter *scriptedPrompter) Confirm(message string, defaultAnswer bool) (bool, error) {
	prompter.questions = append(prompter.questions, message)
	prompter.defaults = append(prompter.defaults, defaultAnswer)
	return prompter.answer, prompter.err
}

type indicatorJournal struct {
	events []string
}

type journalIndicator struct {
	journal *indicatorJournal
}

func (indicator journalIndicator) SetText(text string) {
	indicator.journal.events = append(indicator.journal.events, "text:"+text)
}

func (indicator journalIndicator) Succeed(text string) {
	indicator.journal.events = append(indicator.journal.events, "succeed:"+text)
}

func (indicator journalIndicator) Warn(text string) {
	indicator.journal.events = append(indicator.journal.events, "warn:"+text)
}

func (indicator journalIndicator) Fail(text string) {
	indicator.journal.events = append(indicator.journal.events, "fail:"+text)
}

func (journal *indicatorJournal) start(text string) cd.StatusIndicator {
	journal.events = append(journal.events, "start:"+text)
	return journalIndicator{journal: journal}
}

func newService(testInstance *testing.T, repository *recordingRepository, prompter *scriptedPrompter) (*cd.Service, *indicatorJournal) {
	testInstance.Helper()
	journal := &indicatorJournal{}
	service, serviceError := cd.NewService(cd.ServiceDependencies{
		Repository:     repository,
		Prompter:       prompter,
		StartIndicator: journal.start,
		Logger:         zap.NewNop(),
	})
	require.NoError(testInstance, serviceError)
	return service, journal
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	journal := &indicatorJournal{}
	testCases := []struct {
		name         string
		dependencies cd.ServiceDependencies
		expected     error
	}{
		{name: "missing_repository", dependencies: cd.ServiceDependencies{Prompter: &scriptedPrompter{}, StartIndicator: journal.start}, expected: cd.ErrRepositoryNotConfigured},
		{name: "missing_prompter", dependencies: cd.ServiceDependencies{Repository: &recordingRepository{}, StartIndicator: journal.start}, expected: cd.ErrConfirmationPrompterNotConfigured},
		{name: "missing_indicator", dependencies: cd.ServiceDependencies{Repository: &recordingRepository{}, Prompter: &scriptedPrompter{}}, expected: cd.ErrStatusIndicatorNotConfigured},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			_, serviceError := cd.NewService(testCase.dependencies)
			require.ErrorIs(subTest, serviceError, testCase.expected)
		})
	}
}

func TestCheckoutRejectsEmptyBranch(testInstance *testing.T) {
	repository := &recordingRepository{}
	service, journal := newService(testInstance, repository, &scriptedPrompter{})

	_, checkoutError := service.Checkout(context.Background(), "   ")
	require.ErrorIs(testInstance, checkoutError, cd.ErrBranchNameRequired)
	require.Empty(testInstance, repository.operations)
	require.Empty(testInstance, journal.events)
}

func TestCheckoutCleanTreeSkipsPrompt(testInstance *testing.T) {
	repository := &recordingRepository{}
	prompter := &scriptedPrompter{}
	service, journal := newService(testInstance, repository, prompter)

	result, checkoutError := service.Checkout(context.Background(), "feature-x")
	require.NoError(testInstance, checkoutError)
	require.True(testInstance, result.Switched())
	require.Equal(testInstance, cd.Result{BranchName: "feature-x", State: cd.StateDone}, result)
	require.Equal(testInstance, []string{statusOperation, checkoutOperation}, repository.operations)
	require.Equal(testInstance, []string{"feature-x"}, repository.checkedOut)
	require.Empty(testInstance, prompter.questions)
	require.Equal(testInstance, []string{
		"start:Switching to branch feature-x",
		"succeed:Successfully switched to branch feature-x",
	}, journal.events)
}

func TestCheckoutDirtyTreeDeclined(testInstance *testing.T) {
	testCases := []struct {
		name     string
		prompter *scriptedPrompter
	}{
		{name: "user_declines", prompter: &scriptedPrompter{answer: false}},
		{name: "prompt_interrupted", prompter: &scriptedPrompter{answer: true, err: errors.New("interrupt")}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			repository := &recordingRepository{status: " M README.md\n"}
			service, journal := newService(subTest, repository, testCase.prompter)

			result, checkoutError := service.Checkout(context.Background(), "bugfix-y")
			require.NoError(subTest, checkoutError)
			require.False(subTest, result.Switched())
			require.Equal(subTest, cd.StateAborted, result.State)
			require.Equal(subTest, []string{statusOperation}, repository.operations)
			require.Equal(subTest, []string{"Would you like to stash your changes before switching?"}, testCase.prompter.questions)
			require.Equal(subTest, []bool{true}, testCase.prompter.defaults)
			require.Equal(subTest, []string{
				"start:Switching to branch bugfix-y",
				"warn:You have uncommitted changes.",
				"fail:Branch switch cancelled",
			}, journal.events)
		})
	}
}

func TestCheckoutDirtyTreeStashesOnceBeforeCheckout(testInstance *testing.T) {
	repository := &recordingRepository{status: " M main.go\n"}
	service, journal := newService(testInstance, repository, &scriptedPrompter{answer: true})

	result, checkoutError := service.Checkout(context.Background(), "feature-x")
	require.NoError(testInstance, checkoutError)
	require.True(testInstance, result.Switched())
	require.True(testInstance, result.Stashed)
	require.Equal(testInstance, []string{statusOperation, stashOperation, checkoutOperation}, repository.operations)
	require.Equal(testInstance, []string{"Auto-stash before branch switch"}, repository.stashMessages)
	require.Equal(testInstance, []string{
		"start:Switching to branch feature-x",
		"warn:You have uncommitted changes.",
		"text:Stashing changes...",
		"succeed:Changes stashed",
		"start:Switching to branch feature-x",
		"succeed:Successfully switched to branch feature-x",
	}, journal.events)
}

func TestCheckoutWithOnlyUntrackedFilesReportsNothingStashed(testInstance *testing.T) {
	repository := &recordingRepository{status: "?? scratch.txt\n", stashEmpty: true}
	service, journal := newService(testInstance, repository, &scriptedPrompter{answer: true})

	result, checkoutError := service.Checkout(context.Background(), "feature-x")
	require.NoError(testInstance, checkoutError)
	require.True(testInstance, result.Switched())
	require.False(testInstance, result.Stashed)
	require.Equal(testInstance, []string{statusOperation, stashOperation, checkoutOperation}, repository.operations)
	require.Equal(testInstance, []string{
		"start:Switching to branch feature-x",
		"warn:You have uncommitted changes.",
		"text:Stashing changes...",
		"warn:No local changes to save",
		"start:Switching to branch feature-x",
		"succeed:Successfully switched to branch feature-x",
	}, journal.events)
}

func TestCheckoutUsesConfiguredStashMessage(testInstance *testing.T) {
	repository := &recordingRepository{status: " M go.mod\n"}
	journal := &indicatorJournal{}
	service, serviceError := cd.NewService(cd.ServiceDependencies{
		Repository:     repository,
		Prompter:       &scriptedPrompter{answer: true},
		StartIndicator: journal.start,
		StashMessage:   "  parked work  ",
	})
	require.NoError(testInstance, serviceError)

	_, checkoutError := service.Checkout(context.Background(), "main")
	require.NoError(testInstance, checkoutError)
	require.Equal(testInstance, []string{"parked work"}, repository.stashMessages)
}

func TestCheckoutFailures(testInstance *testing.T) {
	checkoutFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"checkout", "feature-x"}}},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: "error: Your local changes would be overwritten by checkout.\n"},
	}

	testCases := []struct {
		name               string
		repository         *recordingRepository
		expectedOperations []string
		expectedEvents     []string
		expectedStashed    bool
	}{
		{
			name:               "status_failure",
			repository:         &recordingRepository{statusError: errors.New("status unavailable")},
			expectedOperations: []string{statusOperation},
			expectedEvents: []string{
				"start:Switching to branch feature-x",
				"fail:Failed to checkout branch: status unavailable",
			},
		},
		{
			name:               "stash_failure_prevents_checkout",
			repository:         &recordingRepository{status: " M a\n", stashError: errors.New("cannot stash")},
			expectedOperations: []string{statusOperation, stashOperation},
			expectedEvents: []string{
				"start:Switching to branch feature-x",
				"warn:You have uncommitted changes.",
				"text:Stashing changes...",
				"fail:Failed to checkout branch: cannot stash",
			},
		},
		{
			name:               "checkout_failure_reports_captured_error",
			repository:         &recordingRepository{checkoutError: checkoutFailure},
			expectedOperations: []string{statusOperation, checkoutOperation},
			expectedEvents: []string{
				"start:Switching to branch feature-x",
				"fail:Failed to checkout branch: error: Your local changes would be overwritten by checkout.",
			},
		},
		{
			name:               "checkout_failure_after_stash",
			repository:         &recordingRepository{status: " M a\n", checkoutError: checkoutFailure},
			expectedOperations: []string{statusOperation, stashOperation, checkoutOperation},
			expectedStashed:    true,
			expectedEvents: []string{
				"start:Switching to branch feature-x",
				"warn:You have uncommitted changes.",
				"text:Stashing changes...",
				"succeed:Changes stashed",
				"start:Switching to branch feature-x",
				"fail:Failed to checkout branch: error: Your local changes would be overwritten by checkout.",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			service, journal := newService(subTest, testCase.repository, &scriptedPrompter{answer: true})

			result, checkoutError := service.Checkout(context.Background(), "feature-x")
			require.NoError(subTest, checkoutError)
			require.False(subTest, result.Switched())
			require.Equal(subTest, cd.StateFailed, result.State)
			require.Error(subTest, result.Failure)
			require.Equal(subTest, testCase.expectedStashed, result.Stashed)
			require.Equal(subTest, testCase.expectedOperations, testCase.repository.operations)
			require.Equal(subTest, testCase.expectedEvents, journal.events)
		})
	}
}

func TestCheckoutLogsFinalState(testInstance *testing.T) {
	core, observedLogs := observer.New(zapcore.DebugLevel)
	journal := &indicatorJournal{}
	service, serviceError := cd.NewService(cd.ServiceDependencies{
		Repository:     &recordingRepository{},
		Prompter:       &scriptedPrompter{},
		StartIndicator: journal.start,
		Logger:         zap.New(core),
	})
	require.NoError(testInstance, serviceError)

	_, checkoutError := service.Checkout(context.Background(), "feature-x")
	require.NoError(testInstance, checkoutError)

	entries := observedLogs.FilterMessage("branch switch finished").All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "done", entries[0].ContextMap()["state"])
	require.Equal(testInstance, "feature-x", entries[0].ContextMap()["branch"])
}
