package branches

import (
	"strconv"
	"strings"

	"github.com/temirov/branchswitch/internal/gitrepo"
)

// BranchSummary describes a local branch and how recently it received a commit.
type BranchSummary struct {
	Name         string
	RelativeTime string
	Timestamp    int64
	IsCurrent    bool
}

// ParseBranchLine converts a gitrepo.BranchFormat line into a BranchSummary.
// Fields are taken from the right so branch names containing the separator survive.
// An unparsable timestamp becomes zero; a line without a name is rejected.
func ParseBranchLine(line string, currentBranch string) (BranchSummary, bool) {
	trimmedLine := strings.TrimSpace(line)

	timestampSeparatorIndex := strings.LastIndex(trimmedLine, gitrepo.BranchFieldSeparator)
	if timestampSeparatorIndex < 0 {
		return summaryFor(trimmedLine, "", 0, currentBranch)
	}
	timestampField := trimmedLine[timestampSeparatorIndex+len(gitrepo.BranchFieldSeparator):]
	remainder := trimmedLine[:timestampSeparatorIndex]

	relativeTimeSeparatorIndex := strings.LastIndex(remainder, gitrepo.BranchFieldSeparator)
	if relativeTimeSeparatorIndex < 0 {
		return summaryFor(remainder, "", parseTimestamp(timestampField), currentBranch)
	}
	relativeTimeField := remainder[relativeTimeSeparatorIndex+len(gitrepo.BranchFieldSeparator):]
	nameField := remainder[:relativeTimeSeparatorIndex]

	return summaryFor(nameField, relativeTimeField, parseTimestamp(timestampField), currentBranch)
}

func summaryFor(name string, relativeTime string, timestamp int64, currentBranch string) (BranchSummary, bool) {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return BranchSummary{}, false
	}
	return BranchSummary{
		Name:         trimmedName,
		RelativeTime: strings.TrimSpace(relativeTime),
		Timestamp:    timestamp,
		IsCurrent:    len(currentBranch) > 0 && trimmedName == currentBranch,
	}, true
}

func parseTimestamp(field string) int64 {
	timestamp, parseError := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
	if parseError != nil {
		return 0
	}
	return timestamp
}
