// Package branches inspects repository state for the branch switcher.
//
// Probe answers whether the working directory is a repository, which branch is
// checked out, and which other local branches were committed to most recently.
// Query failures are reported to the user and degrade to empty answers.
package branches
