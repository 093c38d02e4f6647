package utils

import (
	"io"
	"sync"
)

// flushableWriter matches buffered writers that expose an explicit flush.
type flushableWriter interface {
	Flush() error
}

// FlushingWriter forwards writes to the wrapped writer and flushes it after
// each one, so pack instructions appear as soon as they are printed even
// when the destination buffers.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps the provided writer. An already wrapped writer is
// returned unchanged; a nil writer yields nil.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write forwards data to the underlying writer and flushes it when the
// writer supports flushing.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if destination, canFlush := flushingWriter.writer.(flushableWriter); canFlush {
		if flushError := destination.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}
