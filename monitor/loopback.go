package main

import (
	"context"
	"fmt"
	"io"

	"github.com/itohio/wxstation/pkg/config"
	"github.com/itohio/wxstation/pkg/link"
	"github.com/itohio/wxstation/pkg/schedule"
	"github.com/itohio/wxstation/pkg/sensor"
	"github.com/itohio/wxstation/pkg/station"
)

// startLoopback runs a simulated station whose serial output is piped into a listener.
func startLoopback(ctx context.Context, cfg *config.Config) (link.Receiver, error) {
	channels, err := station.ChannelsFromConfig(cfg.Channels)
	if err != nil {
		return nil, err
	}

	sig := schedule.NewSignal()
	sched, err := schedule.New(cfg.Station.Period, sig, nil)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()

	st, err := station.New(station.Config{
		Channels: channels,
	}, station.Options{
		Transport: link.NewWriter(pw),
		Signal:    sig,
		Analog:    sensor.NewMock(&cfg.Mock),
		Digital:   sensor.NewMockDigital(&cfg.Mock),
		Steps: []station.Step{
			{Name: "Timer", Init: func() error { return sched.Start(ctx) }},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create station: %w", err)
	}

	go func() {
		defer sched.Stop()
		err := st.Run(ctx)
		pw.CloseWithError(err)
	}()

	return link.NewReaderListener(pr, link.DefaultBufferSize), nil
}
