// Package bundle packages a repository's remote-tracking history into a
// password-protected archive.
//
// Service orchestrates a single run: it resolves the remote to package,
// obtains a password, drives the external process pipeline (reference lister
// feeding the bundle producer, whose output passes through the streaming
// header rewrite into the encryptor), and prints the instructions needed to
// reconstruct an equivalent clone from the archive.
package bundle
