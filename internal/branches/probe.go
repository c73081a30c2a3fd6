package branches

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/branchswitch/internal/execshell"
)

const (
	gatewayMissingMessageConstant            = "repository gateway not configured"
	reporterMissingMessageConstant           = "error reporter not configured"
	currentBranchErrorTemplateConstant       = "Error getting current branch: %s"
	branchListErrorTemplateConstant          = "Error getting branches: %s"
	repositoryCheckFailedLogMessageConstant  = "repository check failed"
	currentBranchFailedLogMessageConstant    = "current branch lookup failed"
	branchListFailedLogMessageConstant       = "branch listing failed"
	branchLineSkippedLogMessageConstant      = "skipping branch line without a name"
	recentBranchesResolvedLogMessageConstant = "recent branches resolved"
	logFieldBranchLineConstant               = "branch_line"
	logFieldCurrentBranchConstant            = "current_branch"
	logFieldCandidateCountConstant           = "candidate_count"
	logFieldLimitConstant                    = "limit"
)

// ErrRepositoryGatewayNotConfigured indicates the probe was built without a gateway.
var ErrRepositoryGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// ErrErrorReporterNotConfigured indicates the probe was built without a reporter.
var ErrErrorReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// RepositoryGateway exposes the repository queries the probe relies on.
type RepositoryGateway interface {
	IsInsideWorkTree(executionContext context.Context) (bool, error)
	CurrentBranch(executionContext context.Context) (string, error)
	ListBranchesByCommitDate(executionContext context.Context) ([]string, error)
}

// ErrorReporter shows query failures to the user.
type ErrorReporter interface {
	Error(message string)
}

// ProbeDependencies enumerates the collaborators required by Probe.
type ProbeDependencies struct {
	Gateway  RepositoryGateway
	Reporter ErrorReporter
	Logger   *zap.Logger
}

// Probe answers repository state questions without ever failing the caller.
type Probe struct {
	gateway  RepositoryGateway
	reporter ErrorReporter
	logger   *zap.Logger
}

// NewProbe validates dependencies and constructs a Probe.
func NewProbe(dependencies ProbeDependencies) (*Probe, error) {
	if dependencies.Gateway == nil {
		return nil, ErrRepositoryGatewayNotConfigured
	}
	if dependencies.Reporter == nil {
		return nil, ErrErrorReporterNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Probe{gateway: dependencies.Gateway, reporter: dependencies.Reporter, logger: logger}, nil
}

// IsRepository reports whether the working directory lies inside a work tree.
// Any failure is a negative answer.
func (probe *Probe) IsRepository(executionContext context.Context) bool {
	insideWorkTree, checkError := probe.gateway.IsInsideWorkTree(executionContext)
	if checkError != nil {
		probe.logger.Debug(repositoryCheckFailedLogMessageConstant, zap.Error(checkError))
		return false
	}
	return insideWorkTree
}

// CurrentBranch returns the checked-out branch. The boolean is false in a detached state
// or when the lookup fails, in which case the failure has already been reported.
func (probe *Probe) CurrentBranch(executionContext context.Context) (string, bool) {
	branchName, lookupError := probe.gateway.CurrentBranch(executionContext)
	if lookupError != nil {
		probe.logger.Debug(currentBranchFailedLogMessageConstant, zap.Error(lookupError))
		probe.reporter.Error(fmt.Sprintf(currentBranchErrorTemplateConstant, execshell.FailureMessage(lookupError)))
		return "", false
	}
	if len(branchName) == 0 {
		return "", false
	}
	return branchName, true
}

// RecentBranches returns up to limit local branches other than the current one,
// most recently committed first. A listing failure is reported and yields no branches.
func (probe *Probe) RecentBranches(executionContext context.Context, limit int) []BranchSummary {
	candidates := make([]BranchSummary, 0)
	if limit <= 0 {
		return candidates
	}

	branchLines, listError := probe.gateway.ListBranchesByCommitDate(executionContext)
	if listError != nil {
		probe.logger.Debug(branchListFailedLogMessageConstant, zap.Error(listError))
		probe.reporter.Error(fmt.Sprintf(branchListErrorTemplateConstant, execshell.FailureMessage(listError)))
		return candidates
	}

	// The current branch lookup failure, if any, was already surfaced by CurrentBranch.
	currentBranch, currentBranchError := probe.gateway.CurrentBranch(executionContext)
	if currentBranchError != nil {
		probe.logger.Debug(currentBranchFailedLogMessageConstant, zap.Error(currentBranchError))
		currentBranch = ""
	}

	for _, branchLine := range branchLines {
		summary, parsed := ParseBranchLine(branchLine, currentBranch)
		if !parsed {
			probe.logger.Debug(branchLineSkippedLogMessageConstant, zap.String(logFieldBranchLineConstant, branchLine))
			continue
		}
		if summary.IsCurrent {
			continue
		}
		candidates = append(candidates, summary)
		if len(candidates) == limit {
			break
		}
	}

	probe.logger.Debug(
		recentBranchesResolvedLogMessageConstant,
		zap.String(logFieldCurrentBranchConstant, currentBranch),
		zap.Int(logFieldCandidateCountConstant, len(candidates)),
		zap.Int(logFieldLimitConstant, limit),
	)
	return candidates
}
