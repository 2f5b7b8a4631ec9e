//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/itohio/wxstation/pkg/classify"
	"github.com/itohio/wxstation/pkg/sensor"
	"github.com/itohio/wxstation/pkg/station"
)

const (
	// Sampling configuration
	SAMPLE_PERIOD = 5 * time.Second

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Serial configuration
	// Longest line: "Error: Soil Moisture sensor reading failed\n" = 43 bytes
	// 3 channels every 5 s is well below 9600 baud (960 bytes/sec)
	UART_BAUD_RATE = 9600

	// Thresholds
	HIGH_THRESHOLD = 3000
	RANGE_CEILING  = 5000
)

// ADC inputs by channel index
var adcPins = map[uint8]machine.Pin{
	0: machine.A0, // soil moisture
	8: machine.A8, // rain
}

// Digital inputs by pin index (none on the reference board)
var digitalPins = map[uint8]machine.Pin{}

// channels is the compiled channel table; the order is the reporting order.
var channels = []station.Channel{
	{
		Channel: sensor.Channel{ID: "dht11", Label: "DHT11", Kind: sensor.Unimplemented},
	},
	{
		Channel: sensor.Channel{ID: "soil", Label: "Soil Moisture", Kind: sensor.Analog, Input: 0},
		Policy: classify.Policy{
			Strategy:   classify.Range,
			Thresholds: classify.Thresholds{High: HIGH_THRESHOLD, Ceiling: RANGE_CEILING},
		},
	},
	{
		Channel: sensor.Channel{ID: "rain", Label: "Rain", Kind: sensor.Analog, Input: 8},
		Policy: classify.Policy{
			Strategy:   classify.Range,
			Thresholds: classify.Thresholds{High: HIGH_THRESHOLD, Ceiling: RANGE_CEILING},
		},
	},
}
