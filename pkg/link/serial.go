package link

import (
	"fmt"
	"log"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the station's serial line rate.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the status channel buffer.
	DefaultBufferSize = 16
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Serial is the station's output transport on a host serial port.
type Serial struct {
	port     string
	baudRate int

	mu   sync.RWMutex
	conn serial.Port
	one  [1]byte
}

// NewSerial creates a serial transport for the given port. The port is not opened.
func NewSerial(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Serial{
		port:     port,
		baudRate: baudRate,
	}
}

// Open opens the serial port in 8N1 mode.
func (s *Serial) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: s.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(s.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	s.conn = port
	return nil
}

// Close closes the serial port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	if err := s.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	s.conn = nil
	return nil
}

// Ready reports whether the port is open.
func (s *Serial) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil
}

// WriteByte blocks until the byte was handed to the port.
func (s *Serial) WriteByte(b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}

	s.one[0] = b
	for {
		n, err := s.conn.Write(s.one[:])
		if err != nil {
			return fmt.Errorf("failed to write to serial port: %w", err)
		}
		if n == 1 {
			return nil
		}
	}
}
