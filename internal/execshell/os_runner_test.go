package execshell

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeEnvironmentAppendsSortedOverrides(testInstance *testing.T) {
	require.Nil(testInstance, mergeEnvironment([]string{"HOME=/root"}, nil))

	merged := mergeEnvironment([]string{"HOME=/root"}, map[string]string{"LC_ALL": "C", "GIT_TERMINAL_PROMPT": "0"})
	require.Equal(testInstance, []string{"HOME=/root", "GIT_TERMINAL_PROMPT=0", "LC_ALL=C"}, merged)
}

func TestOSCommandRunnerCapturesExitCodeAndOutput(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("requires a POSIX shell")
	}

	runner := NewOSCommandRunner()
	result, runError := runner.Run(context.Background(), ShellCommand{
		Name:    CommandName("sh"),
		Details: CommandDetails{Arguments: []string{"-c", "echo out; echo err 1>&2; exit 3"}},
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, result.ExitCode)
	require.Equal(testInstance, "out\n", result.StandardOutput)
	require.Equal(testInstance, "err\n", result.StandardError)
}

func TestOSCommandRunnerReportsMissingExecutable(testInstance *testing.T) {
	runner := NewOSCommandRunner()
	_, runError := runner.Run(context.Background(), ShellCommand{Name: CommandName("branchswitch-missing-tool")})
	require.Error(testInstance, runError)
}
