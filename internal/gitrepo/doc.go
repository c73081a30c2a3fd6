// Package gitrepo contains the git gateway used by the branch switcher.
//
// RepositoryManager exposes one method per git operation the switcher needs
// (work tree detection, current branch, branches by commit date, porcelain
// status, stash push, and checkout) and delegates execution to a GitExecutor.
package gitrepo
