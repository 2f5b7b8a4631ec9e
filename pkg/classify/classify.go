package classify

import (
	"fmt"

	"github.com/itohio/wxstation/pkg/sensor"
)

// Normalized codes reported for Normal and Alarm results.
const (
	CodeNormal = 0
	CodeAlarm  = 1
)

// DefaultCeiling is the range ceiling the station compares against when none is configured.
// Values above it are treated as failed conversions rather than alarms.
const DefaultCeiling = 5000

// State is the category of a classified reading.
type State uint8

const (
	Invalid State = iota
	Normal
	Alarm
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Alarm:
		return "alarm"
	default:
		return "invalid"
	}
}

// Strategy selects how raw values map onto Normal/Alarm.
type Strategy uint8

const (
	// Range compares an analog value against a high threshold and a hard ceiling.
	Range Strategy = iota
	// Presence maps a digital level directly to Alarm (asserted) or Normal.
	Presence
)

func (s Strategy) String() string {
	switch s {
	case Range:
		return "range"
	case Presence:
		return "presence"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// ParseStrategy converts a configuration name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "range", "":
		return Range, nil
	case "presence":
		return Presence, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// Thresholds bound the normal/alarm decision for one channel.
type Thresholds struct {
	High      uint16 // strictly greater triggers Alarm (Range)
	Ceiling   uint16 // strictly greater is Invalid (Range)
	ActiveLow bool   // level 0 means asserted (Presence)
}

// Policy is the immutable per-channel classification configuration.
type Policy struct {
	Strategy   Strategy
	Thresholds Thresholds
}

// Result is the outcome of classifying one reading.
type Result struct {
	State State
}

// Code returns the normalized code for Normal/Alarm results.
// ok is false for Invalid results, which carry no code.
func (r Result) Code() (code int, ok bool) {
	switch r.State {
	case Normal:
		return CodeNormal, true
	case Alarm:
		return CodeAlarm, true
	}
	return 0, false
}

func (r Result) String() string {
	return r.State.String()
}

// Classify maps a reading to a Result. It has no state: equal inputs always
// produce equal results. An invalid reading is Invalid regardless of its raw value.
func Classify(r sensor.Reading, p Policy) Result {
	if !r.Valid {
		return Result{State: Invalid}
	}

	switch p.Strategy {
	case Range:
		return classifyRange(r.Raw, p.Thresholds)
	case Presence:
		return classifyPresence(r.Raw, p.Thresholds)
	}
	return Result{State: Invalid}
}

func classifyRange(raw uint16, t Thresholds) Result {
	if raw == sensor.AnalogSentinel || raw > t.Ceiling {
		return Result{State: Invalid}
	}
	if raw > t.High {
		return Result{State: Alarm}
	}
	return Result{State: Normal}
}

func classifyPresence(raw uint16, t Thresholds) Result {
	if raw == sensor.DigitalSentinel {
		return Result{State: Invalid}
	}
	asserted := raw != 0
	if t.ActiveLow {
		asserted = !asserted
	}
	if asserted {
		return Result{State: Alarm}
	}
	return Result{State: Normal}
}
