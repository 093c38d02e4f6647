package stream

import "regexp"

const (
	remoteReferencePatternConstant    = `refs/remotes/[^/]+`
	localReferenceReplacementConstant = "refs/heads"
)

var remoteReferenceExpression = regexp.MustCompile(remoteReferencePatternConstant)

// RewriteHeader replaces every remote-tracking reference namespace in the
// supplied header with the local branch namespace: each maximal match of
// refs/remotes/<scope> becomes the literal refs/heads, dropping the scope.
//
// The rewrite operates on raw bytes so non-ASCII content elsewhere in the
// header passes through losslessly. It is pure and idempotent: no
// refs/remotes/ token survives a pass, so a second pass is a no-op.
func RewriteHeader(header []byte) []byte {
	return remoteReferenceExpression.ReplaceAll(header, []byte(localReferenceReplacementConstant))
}
