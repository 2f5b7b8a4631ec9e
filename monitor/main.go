package main

import (
	"context"
	"flag"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/wxstation/pkg/board"
	"github.com/itohio/wxstation/pkg/config"
	"github.com/itohio/wxstation/pkg/history"
	"github.com/itohio/wxstation/pkg/link"
	"github.com/itohio/wxstation/pkg/report"
	"github.com/itohio/wxstation/pkg/scope"
)

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyUSB0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Run a simulated station in-process instead of opening the serial port")
		headlessFlag = flag.Bool("headless", false, "Log received statuses instead of opening a window")
		listFlag     = flag.Bool("list", false, "List serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		ports, err := link.Ports()
		if err != nil {
			log.Fatalf("Failed to list ports: %v", err)
		}
		for _, p := range ports {
			log.Printf("%s", p.Name)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var receiver link.Receiver
	if *mockFlag {
		receiver, err = startLoopback(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to start simulated station: %v", err)
		}
		log.Printf("Using simulated station")
	} else {
		receiver = link.NewListener(cfg.Serial.Port, cfg.Serial.BaudRate, link.DefaultBufferSize)
	}

	if err := receiver.Connect(); err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.Serial.Port, err)
	}
	defer receiver.Close()

	if *headlessFlag {
		logStatuses(receiver.Statuses())
		return
	}

	b := board.New()
	tl := history.NewTimeline(cfg.Monitor.Window)

	application := app.NewWithID("com.itohio.wxstation.monitor")
	window := application.NewWindow("Weather Station")
	window.Resize(fyne.NewSize(720, 480))
	window.CenterOnScreen()

	boardWidget := board.NewWidget(b)
	scopeWidget := scope.New(tl)
	status := widget.NewLabel("Waiting for station...")

	b.OnUpdate(func() {
		greetings := b.Greetings()
		fyne.Do(func() {
			if greetings > 0 {
				status.SetText("Station online")
			}
			boardWidget.Refresh()
			scopeWidget.Update()
		})
	})

	go b.Consume(receiver.Statuses(), tl)

	window.SetContent(container.NewBorder(status, nil, nil, nil,
		container.NewVSplit(boardWidget, scopeWidget)))
	window.ShowAndRun()
}

// logStatuses logs every received status until the receiver closes.
func logStatuses(in <-chan report.Status) {
	for st := range in {
		switch st.Kind {
		case report.KindGreeting:
			log.Printf("Station online")
		case report.KindInitFailure:
			log.Printf("Station halted: %s initialization failed", st.Label)
		case report.KindError:
			log.Printf("%s: sensor failed", st.Label)
		default:
			log.Printf("%s: %d", st.Label, st.Code)
		}
	}
}
