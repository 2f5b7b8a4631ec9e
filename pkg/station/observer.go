package station

import (
	"time"

	"github.com/itohio/wxstation/pkg/classify"
	"github.com/itohio/wxstation/pkg/sensor"
)

// Observer receives pipeline events. Implementations must not block.
type Observer interface {
	Classified(ch sensor.Channel, r classify.Result)
	CycleDone(d time.Duration)
	ReportFailed(ch sensor.Channel, err error)
	Fault(err error)
}

type nopObserver struct{}

func (nopObserver) Classified(sensor.Channel, classify.Result) {}
func (nopObserver) CycleDone(time.Duration)                   {}
func (nopObserver) ReportFailed(sensor.Channel, error)        {}
func (nopObserver) Fault(error)                               {}
