// Package stream implements the streaming header rewrite applied to git
// bundle data in flight.
//
// A bundle begins with a text header terminated by a blank line and is
// followed by an opaque binary payload. BoundaryScanner locates the blank
// line across arbitrary chunk boundaries, RewriteHeader substitutes
// remote-tracking reference names with local ones, and PatchFilter composes
// the two into a single-pass transform that buffers only the header and
// forwards the payload untouched.
package stream
