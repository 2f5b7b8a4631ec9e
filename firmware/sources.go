//go:build tinygo

package main

import (
	"errors"
	"machine"

	"github.com/itohio/wxstation/pkg/sensor"
)

// adcSource performs conversions on the board ADC.
type adcSource struct {
	adcs  map[uint8]machine.ADC
	cur   machine.ADC
	value uint16
}

func newADCSource(pins map[uint8]machine.Pin) *adcSource {
	adcs := make(map[uint8]machine.ADC, len(pins))
	for ch, pin := range pins {
		adcs[ch] = machine.ADC{Pin: pin}
	}
	return &adcSource{adcs: adcs}
}

func (s *adcSource) configure() {
	machine.InitADC()
	cfg := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	for _, adc := range s.adcs {
		adc.Configure(cfg)
	}
}

func (s *adcSource) Start(input uint8) error {
	adc, ok := s.adcs[input]
	if !ok {
		return errors.New("no such ADC channel")
	}
	s.cur = adc
	return nil
}

// AwaitReady blocks until the conversion completes; Get waits on the hardware flag.
func (s *adcSource) AwaitReady() error {
	// machine.ADC returns 16-bit scaled values
	s.value = s.cur.Get() >> (16 - ADC_RESOLUTION)
	return nil
}

func (s *adcSource) Value() uint16 {
	return s.value
}

// pinSource reads digital levels.
type pinSource struct {
	pins map[uint8]machine.Pin
}

func (s *pinSource) configure() {
	for _, pin := range s.pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	}
}

func (s *pinSource) Level(input uint8) uint16 {
	pin, ok := s.pins[input]
	if !ok {
		return sensor.DigitalSentinel
	}
	if pin.Get() {
		return 1
	}
	return 0
}

// uartTransport writes status lines to the Bluetooth module UART.
type uartTransport struct {
	uart       *machine.UART
	configured bool
}

func (t *uartTransport) configure() error {
	if err := t.uart.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE}); err != nil {
		return err
	}
	t.configured = true
	return nil
}

// WriteByte blocks until the transmit register accepted the byte.
func (t *uartTransport) WriteByte(b byte) error {
	return t.uart.WriteByte(b)
}

func (t *uartTransport) Ready() bool {
	return t.configured
}
