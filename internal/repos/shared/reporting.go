package shared

import (
	"fmt"
	"io"
)

// Reporter emits formatted progress events to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
// A nil writer discards everything.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = io.Discard
	}
	return writerReporter{writer: writer}
}

// NewDiscardReporter constructs a Reporter that drops every event.
func NewDiscardReporter() Reporter {
	return writerReporter{writer: io.Discard}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	fmt.Fprintf(reporter.writer, format, args...)
}
