package link

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/itohio/wxstation/pkg/report"
	"go.bug.st/serial"
)

// Receiver delivers status lines received from a station.
type Receiver interface {
	Connect() error
	Close() error
	Statuses() <-chan report.Status
	IsConnected() bool
}

var _ Receiver = (*Listener)(nil)

// Listener reads status lines from a station and parses them into report.Status.
// It can be connected again after Close or after the stream ended; every
// connection gets a fresh status channel.
type Listener struct {
	open    func() (io.ReadCloser, error)
	bufSize int

	mu        sync.RWMutex
	conn      io.ReadCloser
	statuses  chan report.Status
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}
}

// NewListener creates a Listener reading from a serial port.
func NewListener(port string, baudRate int, bufSize int) *Listener {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return newListener(func() (io.ReadCloser, error) {
		p, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
		if err != nil {
			return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
		}
		return p, nil
	}, bufSize)
}

// NewReaderListener creates a Listener reading from an already open stream,
// e.g. the read end of a pipe fed by an in-process station.
func NewReaderListener(r io.ReadCloser, bufSize int) *Listener {
	return newListener(func() (io.ReadCloser, error) { return r, nil }, bufSize)
}

func newListener(open func() (io.ReadCloser, error), bufSize int) *Listener {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	statuses := make(chan report.Status)
	close(statuses)
	done := make(chan struct{})
	close(done)
	return &Listener{
		open:     open,
		bufSize:  bufSize,
		statuses: statuses,
		done:     done,
	}
}

// Connect opens the stream and starts reading statuses.
func (l *Listener) Connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connected {
		return fmt.Errorf("already connected")
	}

	// The stream of a previous connection may have ended without Close.
	// Its reader owns its own channels and exits on its own.
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.conn != nil {
		if err := l.conn.Close(); err != nil {
			log.Printf("Error closing link: %v", err)
		}
		l.conn = nil
	}

	conn, err := l.open()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	statuses := make(chan report.Status, l.bufSize)
	done := make(chan struct{})

	l.conn = conn
	l.cancel = cancel
	l.statuses = statuses
	l.done = done
	l.connected = true

	go l.readStatuses(ctx, conn, statuses, done)

	return nil
}

// Close closes the stream, waits for the reader to exit and closes the status channel.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.conn != nil {
		if err := l.conn.Close(); err != nil {
			log.Printf("Error closing link: %v", err)
		}
		l.conn = nil
	}
	l.connected = false
	done := l.done
	l.mu.Unlock()

	<-done
	return nil
}

// Statuses returns the status channel of the current connection. It is closed
// when the stream ends or the listener is closed.
func (l *Listener) Statuses() <-chan report.Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.statuses
}

// IsConnected returns whether the listener is currently reading a stream.
func (l *Listener) IsConnected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

// readStatuses reads lines from the stream and parses them into statuses.
func (l *Listener) readStatuses(ctx context.Context, r io.Reader, out chan<- report.Status, done chan struct{}) {
	defer close(done)
	defer close(out)
	defer l.disconnected(done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readStatuses: %v", r)
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		st, err := report.ParseLine(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		select {
		case out <- st:
		case <-ctx.Done():
			return
		default:
			log.Printf("Status channel full, dropping %q", line)
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF && ctx.Err() == nil {
		log.Printf("Error reading from link: %v", err)
	}
}

// disconnected marks the connection owned by done as ended.
// A newer connection is left untouched.
func (l *Listener) disconnected(done chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == done {
		l.connected = false
	}
}
