package link

import (
	"errors"
	"io"
)

// ErrNotConnected is returned when writing to a closed or unopened transport.
var ErrNotConnected = errors.New("link: not connected")

// Transport is a byte-oriented, blocking output channel. WriteByte returns
// once the channel accepted the byte; there is no timeout.
type Transport interface {
	io.ByteWriter
	// Ready reports whether the transport can accept bytes.
	Ready() bool
}

// Ensure implementations satisfy Transport.
var (
	_ Transport = (*Serial)(nil)
	_ Transport = (*Writer)(nil)
)

// Writer adapts an io.Writer (stdout, a pipe) into a Transport.
type Writer struct {
	w   io.Writer
	one [1]byte
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteByte writes a single byte, retrying short writes.
func (w *Writer) WriteByte(b byte) error {
	if w.w == nil {
		return ErrNotConnected
	}
	w.one[0] = b
	for {
		n, err := w.w.Write(w.one[:])
		if err != nil {
			return err
		}
		if n == 1 {
			return nil
		}
	}
}

// Ready reports whether an underlying writer is present.
func (w *Writer) Ready() bool {
	return w.w != nil
}
