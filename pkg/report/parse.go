package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a received status line.
type Kind uint8

const (
	KindValue Kind = iota
	KindError
	KindInitFailure
	KindGreeting
)

// Status is a parsed status line as seen by a receiver.
type Status struct {
	Kind  Kind
	Label string // channel label, or init step for KindInitFailure
	Code  int    // normalized code for KindValue
	Text  string // the line without terminator
}

const (
	errorPrefix    = "Error: "
	readingSuffix  = " sensor reading failed"
	initFailSuffix = " initialization failed"
	labelSeparator = ": "
	maxLineLength  = 128
)

// ParseLine parses one received line (with or without terminator).
// Format: "<label>: <code>", "Error: <label> sensor reading failed",
// "Error: <step> initialization failed" or the greeting.
func ParseLine(line string) (Status, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Status{}, fmt.Errorf("empty line")
	}
	if len(line) > maxLineLength {
		return Status{}, fmt.Errorf("line too long: %d bytes", len(line))
	}

	if line == Greeting {
		return Status{Kind: KindGreeting, Text: line}, nil
	}

	if rest, ok := strings.CutPrefix(line, errorPrefix); ok {
		if label, ok := strings.CutSuffix(rest, readingSuffix); ok && label != "" {
			return Status{Kind: KindError, Label: label, Text: line}, nil
		}
		if step, ok := strings.CutSuffix(rest, initFailSuffix); ok && step != "" {
			return Status{Kind: KindInitFailure, Label: step, Text: line}, nil
		}
		return Status{}, fmt.Errorf("unrecognized error line %q", line)
	}

	idx := strings.LastIndex(line, labelSeparator)
	if idx <= 0 {
		return Status{}, fmt.Errorf("invalid line format: missing %q separator", labelSeparator)
	}

	code, err := strconv.Atoi(line[idx+len(labelSeparator):])
	if err != nil {
		return Status{}, fmt.Errorf("invalid code: %w", err)
	}
	if code != 0 && code != 1 {
		return Status{}, fmt.Errorf("code out of range: %d", code)
	}

	return Status{Kind: KindValue, Label: line[:idx], Code: code, Text: line}, nil
}
