package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/itohio/wxstation/pkg/classify"
	"github.com/itohio/wxstation/pkg/schedule"
	"github.com/itohio/wxstation/pkg/sensor"
	"github.com/itohio/wxstation/pkg/station"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ station.Observer = (*Recorder)(nil)

// Recorder exports station pipeline events as Prometheus metrics.
type Recorder struct {
	cycles        prometheus.Counter
	readings      *prometheus.CounterVec
	reportErrors  *prometheus.CounterVec
	faults        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
}

// New creates a Recorder and registers its collectors with reg.
// When sig is non-nil, tick and coalesced-tick counters are exported from it.
func New(reg prometheus.Registerer, sig *schedule.Signal) *Recorder {
	r := &Recorder{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wxstation_cycles_total",
			Help: "Completed sampling cycles.",
		}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wxstation_readings_total",
			Help: "Classified readings by channel and state.",
		}, []string{"channel", "state"}),
		reportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wxstation_report_errors_total",
			Help: "Status lines that could not be transmitted.",
		}, []string{"channel"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wxstation_startup_faults_total",
			Help: "Startup faults by reason code.",
		}, []string{"code"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wxstation_cycle_duration_seconds",
			Help:    "Time from acquisition start to the last transmitted byte of a cycle.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	reg.MustRegister(r.cycles, r.readings, r.reportErrors, r.faults, r.cycleDuration)

	if sig != nil {
		reg.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "wxstation_ticks_total",
				Help: "Scheduler ticks that armed the readiness signal.",
			}, func() float64 { return float64(sig.Ticks()) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "wxstation_ticks_coalesced_total",
				Help: "Scheduler ticks merged into an already pending one.",
			}, func() float64 { return float64(sig.Coalesced()) }),
		)
	}

	return r
}

func (r *Recorder) Classified(ch sensor.Channel, res classify.Result) {
	r.readings.WithLabelValues(ch.ID, res.State.String()).Inc()
}

func (r *Recorder) CycleDone(d time.Duration) {
	r.cycles.Inc()
	r.cycleDuration.Observe(d.Seconds())
}

func (r *Recorder) ReportFailed(ch sensor.Channel, err error) {
	r.reportErrors.WithLabelValues(ch.ID).Inc()
}

func (r *Recorder) Fault(err error) {
	r.faults.WithLabelValues(string(station.CodeOf(err))).Inc()
}

// Serve exposes the gatherer on addr under /metrics. It blocks like http.ListenAndServe.
func Serve(addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("Serving metrics on %s/metrics", addr)
	return srv.ListenAndServe()
}
