// Package workflow runs the interactive branch switch from start to finish.
//
// A run greets the user, stops early outside a repository or when no other
// branch exists, shows the branch menu and hands the chosen branch to the
// switcher. The returned Outcome carries the process exit code; the package
// itself never exits.
package workflow
