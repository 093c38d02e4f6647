package stream

import (
	"errors"
	"io"
)

const pumpChunkSizeConstant = 32 * 1024

type filterState int

const (
	filterStateBuffering filterState = iota
	filterStatePassThrough
)

// PatchFilter rewrites the header of a byte stream while forwarding the
// remainder untouched.
//
// The filter starts in a buffering state, accumulating chunks until its
// scanner reports the blank-line boundary. At that point the buffered header
// is rewritten exactly once, emitted together with the unscanned remainder
// of the current chunk, and the filter becomes a pass-through for the rest
// of its lifetime. Memory consumption is therefore bounded by the header
// length, never by the payload length. A stream that ends before any
// boundary is treated as all header and rewritten at end of stream.
type PatchFilter struct {
	scanner      *BoundaryScanner
	headerBuffer []byte
	state        filterState
}

// NewPatchFilter constructs a filter in the buffering state.
func NewPatchFilter() *PatchFilter {
	return &PatchFilter{scanner: NewBoundaryScanner()}
}

// Transform consumes one chunk and returns the bytes to emit downstream for
// it. The result is empty while the header is still being buffered. Once the
// boundary has been seen, the returned slice may alias the input chunk.
func (filter *PatchFilter) Transform(chunk []byte) []byte {
	if filter.state == filterStatePassThrough {
		return chunk
	}

	boundaryOffset, boundaryFound := filter.scanner.Scan(chunk)
	if !boundaryFound {
		filter.headerBuffer = append(filter.headerBuffer, chunk...)
		return nil
	}

	filter.headerBuffer = append(filter.headerBuffer, chunk[:boundaryOffset+1]...)
	rewrittenHeader := RewriteHeader(filter.headerBuffer)
	filter.headerBuffer = nil
	filter.state = filterStatePassThrough

	chunkRemainder := chunk[boundaryOffset+1:]
	transformed := make([]byte, 0, len(rewrittenHeader)+len(chunkRemainder))
	transformed = append(transformed, rewrittenHeader...)
	transformed = append(transformed, chunkRemainder...)
	return transformed
}

// Finish signals end of stream and returns any final bytes to emit. When the
// boundary was never found the entire buffered stream is rewritten here;
// otherwise nothing remains. Finish is idempotent.
func (filter *PatchFilter) Finish() []byte {
	if filter.state == filterStatePassThrough {
		return nil
	}
	filter.state = filterStatePassThrough

	if len(filter.headerBuffer) == 0 {
		return nil
	}
	rewrittenHeader := RewriteHeader(filter.headerBuffer)
	filter.headerBuffer = nil
	return rewrittenHeader
}

// Pump copies the source stream into the destination through the filter
// until end of stream. Writes block until the destination accepts the data,
// which propagates downstream backpressure to the source.
func (filter *PatchFilter) Pump(source io.Reader, destination io.Writer) error {
	chunkBuffer := make([]byte, pumpChunkSizeConstant)
	for {
		bytesRead, readError := source.Read(chunkBuffer)
		if bytesRead > 0 {
			transformed := filter.Transform(chunkBuffer[:bytesRead])
			if len(transformed) > 0 {
				if _, writeError := destination.Write(transformed); writeError != nil {
					return writeError
				}
			}
		}
		if readError != nil {
			if errors.Is(readError, io.EOF) {
				remainder := filter.Finish()
				if len(remainder) > 0 {
					if _, writeError := destination.Write(remainder); writeError != nil {
						return writeError
					}
				}
				return nil
			}
			return readError
		}
	}
}
