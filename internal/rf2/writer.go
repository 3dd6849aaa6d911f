package rf2

import (
	"bufio"
	"io"
	"strings"
)

// RowWriter writes CRLF-terminated, tab-separated lines.
type RowWriter struct {
	w *bufio.Writer
}

func NewRowWriter(w io.Writer) *RowWriter {
	return &RowWriter{w: bufio.NewWriterSize(w, 256*1024)}
}

func (rw *RowWriter) WriteHeader(h Header) error {
	_, err := rw.w.WriteString(strings.Join(h, Tab) + CRLF)
	return err
}

func (rw *RowWriter) WriteRow(r Row) error {
	_, err := rw.w.WriteString(r.Line())
	return err
}

// Flush must be called once all rows are written.
func (rw *RowWriter) Flush() error {
	return rw.w.Flush()
}
