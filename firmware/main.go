//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/wxstation/pkg/schedule"
	"github.com/itohio/wxstation/pkg/station"
)

func main() {
	tr := &uartTransport{uart: machine.UART0}
	adc := newADCSource(adcPins)
	gpio := &pinSource{pins: digitalPins}

	sig := schedule.NewSignal()
	sched, err := schedule.New(SAMPLE_PERIOD, sig, nil)
	if err != nil {
		halt(err)
	}

	st, err := station.New(station.Config{Channels: channels}, station.Options{
		Transport: tr,
		Signal:    sig,
		Analog:    adc,
		Digital:   gpio,
		Steps: []station.Step{
			{Name: "USART", Init: func() error { return station.Fail(station.VerifyFailed, tr.configure()) }, Transport: true},
			{Name: "GPIO", Init: func() error { gpio.configure(); return nil }},
			{Name: "ADC", Init: func() error { adc.configure(); return nil }},
			{Name: "Timer", Init: func() error { return sched.Start(context.Background()) }},
		},
	})
	if err != nil {
		halt(err)
	}

	if err := st.Start(); err != nil {
		halt(err)
	}

	// Main loop
	for {
		st.Poll()

		// Small delay to prevent tight loop (ticks are seconds apart)
		time.Sleep(10 * time.Millisecond)
	}
}

// halt stops servicing anything after a startup fault.
func halt(err error) {
	println("fault:", err.Error())
	for {
		time.Sleep(time.Hour)
	}
}
