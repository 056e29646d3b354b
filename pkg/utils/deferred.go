// Package utils holds small helpers shared by the entry point.
package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers everything written to it until Flush. It lets log
// output produced while a full-screen TUI owns the terminal be shown after
// the TUI exits.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Write(p)
}

// Flush writes the buffered output to w and resets the buffer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.buf.Len() == 0 {
		return nil
	}
	_, err := d.buf.WriteTo(w)
	d.buf.Reset()
	return err
}
