// Package cd switches the work tree to a chosen branch, offering to stash uncommitted changes first.
package cd
