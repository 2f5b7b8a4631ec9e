package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/wxstation/pkg/config"
	"github.com/itohio/wxstation/pkg/link"
	"github.com/itohio/wxstation/pkg/metrics"
	"github.com/itohio/wxstation/pkg/schedule"
	"github.com/itohio/wxstation/pkg/sensor"
	"github.com/itohio/wxstation/pkg/station"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	var (
		portFlag    = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyUSB0)")
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		stdoutFlag  = flag.Bool("stdout", false, "Write status lines to stdout instead of the serial port")
		metricsFlag = flag.String("metrics", "", "Metrics listen address override (e.g., :9100)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *metricsFlag != "" {
		cfg.Metrics.Addr = *metricsFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	channels, err := station.ChannelsFromConfig(cfg.Channels)
	if err != nil {
		log.Fatalf("Invalid channel table: %v", err)
	}

	sig := schedule.NewSignal()
	sched, err := schedule.New(cfg.Station.Period, sig, nil)
	if err != nil {
		log.Fatalf("Invalid schedule: %v", err)
	}
	defer sched.Stop()

	var (
		tr       link.Transport
		openPort func() error
	)
	if *stdoutFlag {
		tr = link.NewWriter(os.Stdout)
		openPort = func() error { return nil }
	} else {
		sp := link.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate)
		defer sp.Close()
		tr = sp
		openPort = func() error { return station.Fail(station.Unavailable, sp.Open()) }
	}

	var obs station.Observer
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		obs = metrics.New(reg, sig)
		go func() {
			if err := metrics.Serve(cfg.Metrics.Addr, reg); err != nil {
				log.Printf("Metrics endpoint stopped: %v", err)
			}
		}()
	}

	// Host builds have no ADC or GPIO; inputs are simulated.
	analog := sensor.NewMock(&cfg.Mock)
	digital := sensor.NewMockDigital(&cfg.Mock)

	st, err := station.New(station.Config{
		Channels: channels,
	}, station.Options{
		Transport: tr,
		Signal:    sig,
		Analog:    analog,
		Digital:   digital,
		Observer:  obs,
		Steps: []station.Step{
			{Name: "USART", Init: openPort, Transport: true},
			{Name: "GPIO", Init: func() error { return nil }},
			{Name: "ADC", Init: func() error { return nil }},
			{Name: "Timer", Init: func() error { return sched.Start(ctx) }},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create station: %v", err)
	}

	log.Printf("Station sampling %d channels every %v", len(channels), cfg.Station.Period)

	err = st.Run(ctx)
	switch {
	case errors.Is(err, station.ErrFault):
		log.Fatalf("Station halted: %v", err)
	case errors.Is(err, context.Canceled):
		log.Printf("Station stopped after %d cycles", st.Cycles())
	case err != nil:
		log.Fatalf("Station stopped: %v", err)
	}
}
