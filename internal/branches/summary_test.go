package branches_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/branchswitch/internal/branches"
)

func TestParseBranchLine(testInstance *testing.T) {
	testCases := []struct {
		name          string
		line          string
		currentBranch string
		expected      branches.BranchSummary
		parsed        bool
	}{
		{
			name:     "complete_line",
			line:     "feature-x|2 hours ago|1699993400",
			expected: branches.BranchSummary{Name: "feature-x", RelativeTime: "2 hours ago", Timestamp: 1699993400},
			parsed:   true,
		},
		{
			name:          "current_branch_is_marked",
			line:          "main|3 days ago|1699700000",
			currentBranch: "main",
			expected:      branches.BranchSummary{Name: "main", RelativeTime: "3 days ago", Timestamp: 1699700000, IsCurrent: true},
			parsed:        true,
		},
		{
			name:     "unparsable_timestamp_becomes_zero",
			line:     "topic|yesterday|soon",
			expected: branches.BranchSummary{Name: "topic", RelativeTime: "yesterday"},
			parsed:   true,
		},
		{
			name:     "separator_inside_branch_name",
			line:     "team|topic|5 weeks ago|1690000000",
			expected: branches.BranchSummary{Name: "team|topic", RelativeTime: "5 weeks ago", Timestamp: 1690000000},
			parsed:   true,
		},
		{
			name:     "name_only",
			line:     "lonely",
			expected: branches.BranchSummary{Name: "lonely"},
			parsed:   true,
		},
		{
			name:   "empty_name",
			line:   "|1 day ago|1",
			parsed: false,
		},
		{
			name:   "blank_line",
			line:   "   ",
			parsed: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			summary, parsed := branches.ParseBranchLine(testCase.line, testCase.currentBranch)
			require.Equal(subTest, testCase.parsed, parsed)
			require.Equal(subTest, testCase.expected, summary)
		})
	}
}
