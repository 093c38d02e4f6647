package stream

const (
	lineFeedByteConstant           = byte('\n')
	carriageReturnByteConstant     = byte('\r')
	boundaryTerminatorRunConstant  = 2
	boundaryNotFoundOffsetConstant = -1
)

// BoundaryScanner locates the first blank line in a chunked byte stream.
//
// The scanner counts consecutive line-feed bytes across chunk invocations so
// a terminator pair straddling two chunks is still detected. Carriage-return
// bytes are transparent: they neither extend nor break a run of terminators.
// Each scanner owns its counter, so independent streams may be scanned
// concurrently by independent scanner instances.
type BoundaryScanner struct {
	terminatorRunLength int
}

// NewBoundaryScanner constructs a scanner with an empty terminator run.
func NewBoundaryScanner() *BoundaryScanner {
	return &BoundaryScanner{}
}

// Scan consumes one chunk and reports whether the blank-line boundary occurs
// within it. When found, the returned offset is the zero-based position of
// the terminating line feed, inclusive; bytes after that offset are not
// examined. When not found, the whole chunk has been consumed and the
// terminator run carries over to the next invocation.
func (scanner *BoundaryScanner) Scan(chunk []byte) (int, bool) {
	for byteIndex := 0; byteIndex < len(chunk); byteIndex++ {
		switch chunk[byteIndex] {
		case lineFeedByteConstant:
			scanner.terminatorRunLength++
			if scanner.terminatorRunLength >= boundaryTerminatorRunConstant {
				return byteIndex, true
			}
		case carriageReturnByteConstant:
		default:
			scanner.terminatorRunLength = 0
		}
	}
	return boundaryNotFoundOffsetConstant, false
}
