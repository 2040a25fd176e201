package util

import (
	"fmt"
	"strings"
)

// Writer accumulates emitted assembly text. emit.Emitter.EmitProgram renders the whole program —
// bootstrap, call glue, and every subroutine in source order — into a single Writer, after every
// subroutine has finished compiling.
type Writer struct {
	sb strings.Builder
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Write appends a formatted line, terminated with a newline.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
	w.sb.WriteByte('\n')
}

// Label emits a bare label line, e.g. "(Main.main)".
func (w *Writer) Label(name string) {
	w.sb.WriteString("(")
	w.sb.WriteString(name)
	w.sb.WriteString(")\n")
}

// Comment emits a line comment, useful for -verbose builds that annotate emitted assembly with
// the IR construct it came from.
func (w *Writer) Comment(format string, args ...interface{}) {
	w.sb.WriteString("// ")
	w.sb.WriteString(fmt.Sprintf(format, args...))
	w.sb.WriteByte('\n')
}

// String returns the accumulated assembly text.
func (w *Writer) String() string { return w.sb.String() }
