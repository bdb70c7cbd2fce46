package rf2

import (
	"encoding/csv"
	"io"

	"github.com/agentstation/inferdelta/pkg/constants"
)

// Writer writes release file rows with CRLF line endings.
type Writer struct {
	cw   *csv.Writer
	rows int
}

// NewWriter returns a Writer on w. Call WriteHeader before the first row.
func NewWriter(w io.Writer) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = constants.FieldSeparator
	cw.UseCRLF = true
	return &Writer{cw: cw}
}

// WriteHeader writes the column header.
func (w *Writer) WriteHeader() error {
	return w.cw.Write(Header)
}

// Write writes one row.
func (w *Writer) Write(row Row) error {
	if err := w.cw.Write(row.Record()); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush flushes buffered rows and reports any write error.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}
