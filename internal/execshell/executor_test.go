package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/branchswitch/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testCommandArgumentConstant                  = "--version"
	testWorkingDirectoryConstant                 = "."
	testStandardErrorOutputConstant              = "error: pathspec 'ghost' did not match"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingObserver struct {
	events []string
}

func (observer *recordingObserver) CommandStarted(execshell.ShellCommand) {
	observer.events = append(observer.events, "started")
}

func (observer *recordingObserver) CommandCompleted(_ execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode == 0 {
		observer.events = append(observer.events, "completed")
		return
	}
	observer.events = append(observer.events, "completed_with_failure")
}

func (observer *recordingObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	observer.events = append(observer.events, "execution_failed")
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
				return
			}
			require.ErrorIs(testInstance, creationError, testCase.expectError)
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedLogCount int
		expectedEvents   []string
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: "ok",
				ExitCode:       0,
			},
			expectedLogCount: 2,
			expectedEvents:   []string{"started", "completed"},
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardError: testStandardErrorOutputConstant,
				ExitCode:      1,
			},
			expectErrorType:  execshell.CommandFailedError{},
			expectedLogCount: 2,
			expectedEvents:   []string{"started", "completed_with_failure"},
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedLogCount: 2,
			expectedEvents:   []string{"started", "execution_failed"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}
			eventObserver := &recordingObserver{}

			shellExecutor, creationError := execshell.NewShellExecutor(logger, recordingRunner, eventObserver)
			require.NoError(testInstance, creationError)

			commandDetails := execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}, WorkingDirectory: testWorkingDirectoryConstant}
			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), commandDetails)

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			require.Len(testInstance, observerLogs.All(), testCase.expectedLogCount)
			require.Equal(testInstance, testCase.expectedEvents, eventObserver.events)
			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, recordingRunner.recordedCommands[0].Name)
		})
	}
}

func TestCommandFailedErrorDescribesCapturedOutput(testInstance *testing.T) {
	failure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"checkout", "ghost"}}},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorOutputConstant + "\n"},
	}

	require.Equal(testInstance, "git checkout ghost failed with exit code 1: "+testStandardErrorOutputConstant, failure.Error())
	require.Equal(testInstance, testStandardErrorOutputConstant, execshell.FailureMessage(failure))
}

func TestFailureMessageFallsBackToErrorText(testInstance *testing.T) {
	runnerFailure := errors.New("exec: \"git\": executable file not found in $PATH")
	executionFailure := execshell.CommandExecutionError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"status"}}},
		Cause:   runnerFailure,
	}

	require.ErrorIs(testInstance, executionFailure, runnerFailure)
	require.Contains(testInstance, execshell.FailureMessage(executionFailure), "executable file not found")
	require.Empty(testInstance, execshell.FailureMessage(nil))

	emptyOutputFailure := execshell.CommandFailedError{Command: execshell.ShellCommand{Name: execshell.CommandGit}, Result: execshell.ExecutionResult{ExitCode: 128}}
	require.Equal(testInstance, "git failed with exit code 128", execshell.FailureMessage(emptyOutputFailure))
}

func TestShellExecutorLeavesRunnerFailuresToObservers(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.DebugLevel)
	recordingRunner := &recordingCommandRunner{executionError: errors.New("exec: \"git\": executable file not found in $PATH")}

	shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"rev-parse", "--is-inside-work-tree"}})
	require.Error(testInstance, executionError)

	failures := observerLogs.FilterMessage("command execution failed").All()
	require.Len(testInstance, failures, 1)
	require.Equal(testInstance, zap.DebugLevel, failures[0].Level)
	require.Zero(testInstance, observerLogs.FilterLevelExact(zap.ErrorLevel).Len())
}
