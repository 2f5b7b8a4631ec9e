package report

import (
	"io"
	"strconv"

	"github.com/itohio/wxstation/pkg/classify"
)

// Greeting is sent once before the first sampling cycle.
const Greeting = "Welcome to Weather Station"

// Terminator ends every reported line.
const Terminator = '\n'

// Line formats a classification result for a channel label, including the terminator.
//
//	Invalid      -> "Error: <label> sensor reading failed\n"
//	Normal/Alarm -> "<label>: <code>\n"
func Line(label string, r classify.Result) string {
	return string(AppendLine(nil, label, r))
}

// AppendLine appends the formatted line to dst and returns the extended buffer.
func AppendLine(dst []byte, label string, r classify.Result) []byte {
	code, ok := r.Code()
	if !ok {
		dst = append(dst, "Error: "...)
		dst = append(dst, label...)
		dst = append(dst, " sensor reading failed"...)
		return append(dst, Terminator)
	}
	dst = append(dst, label...)
	dst = append(dst, ": "...)
	dst = strconv.AppendInt(dst, int64(code), 10)
	return append(dst, Terminator)
}

// InitFailureLine formats the best-effort line sent when a startup step fails.
func InitFailureLine(step string) string {
	return "Error: " + step + " initialization failed\n"
}

// Reporter drives formatted lines through a byte-oriented transport.
// Every byte is handed over individually; a WriteByte call returns only once
// the transport accepted the byte. Nothing is buffered across lines.
type Reporter struct {
	w   io.ByteWriter
	buf []byte
}

// New creates a Reporter writing to w.
func New(w io.ByteWriter) *Reporter {
	return &Reporter{
		w:   w,
		buf: make([]byte, 0, 64),
	}
}

// Report formats and transmits the line for one classified channel.
func (r *Reporter) Report(label string, res classify.Result) error {
	r.buf = AppendLine(r.buf[:0], label, res)
	return r.send(r.buf)
}

// Greet transmits the greeting line.
func (r *Reporter) Greet() error {
	return r.SendLine(Greeting)
}

// InitFailure transmits the failure line of a startup step.
func (r *Reporter) InitFailure(step string) error {
	r.buf = append(r.buf[:0], InitFailureLine(step)...)
	return r.send(r.buf)
}

// SendLine transmits text followed by the line terminator.
func (r *Reporter) SendLine(text string) error {
	r.buf = append(r.buf[:0], text...)
	r.buf = append(r.buf, Terminator)
	return r.send(r.buf)
}

func (r *Reporter) send(line []byte) error {
	for _, b := range line {
		if err := r.w.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}
