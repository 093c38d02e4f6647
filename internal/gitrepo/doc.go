// Package gitrepo contains helpers for interrogating Git repositories.
//
// It exposes RemoteResolver for discovering the first configured remote and
// its URL, along with remote URL parsing used to derive a repository name
// for clone instructions.
package gitrepo
