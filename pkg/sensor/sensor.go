package sensor

import (
	"errors"
	"fmt"
)

// Sentinel raw values meaning "not acquired".
const (
	AnalogSentinel  uint16 = 0xFFFF
	DigitalSentinel uint16 = 0xFF
)

// ErrNotReady is returned by sources whose conversion did not complete.
var ErrNotReady = errors.New("sensor: conversion not ready")

// Kind is the acquisition kind of a channel.
type Kind uint8

const (
	Analog Kind = iota
	Digital
	// Unimplemented channels have no acquisition protocol and always fail.
	Unimplemented
)

func (k Kind) String() string {
	switch k {
	case Analog:
		return "analog"
	case Digital:
		return "digital"
	case Unimplemented:
		return "unimplemented"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind converts a configuration name into a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "analog":
		return Analog, nil
	case "digital":
		return Digital, nil
	case "unimplemented":
		return Unimplemented, nil
	}
	return 0, fmt.Errorf("unknown sensor kind %q", name)
}

// Channel identifies one physical input.
type Channel struct {
	ID    string
	Label string // used verbatim in reported lines
	Kind  Kind
	Input uint8 // ADC channel or pin index, depending on Kind
}

// Reading is a single acquisition result. Readings are values: they are
// created per cycle and never mutated.
type Reading struct {
	Channel string
	Raw     uint16
	Valid   bool
}

// AnalogSource performs analog conversions.
type AnalogSource interface {
	// Start requests a conversion on the given input.
	Start(input uint8) error
	// AwaitReady blocks until the requested conversion completed.
	AwaitReady() error
	// Value returns the converted value.
	Value() uint16
}

// DigitalSource reads logic levels. Level returns 0 or 1,
// or DigitalSentinel when the level cannot be read.
type DigitalSource interface {
	Level(input uint8) uint16
}
