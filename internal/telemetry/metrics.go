package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns one conversion's metrics. Each run gets its own registry so
// nothing leaks between invocations.
type Recorder struct {
	reg *prometheus.Registry

	recordsRead   *prometheus.CounterVec
	decoys        prometheus.Counter
	written       prometheus.Counter
	adductSuspect prometheus.Counter
	stageSeconds  *prometheus.HistogramVec
	lastSuccess   prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		recordsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyconv_records_read_total",
			Help: "Assay library records decoded, by input format.",
		}, []string{"format"}),
		decoys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skyconv_decoys_removed_total",
			Help: "Decoy records dropped from the transition list.",
		}),
		written: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skyconv_transitions_written_total",
			Help: "Transitions written to the Skyline list.",
		}),
		adductSuspect: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skyconv_adduct_suspect_total",
			Help: "Adducts whose last character was not a charge sign.",
		}),
		stageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skyconv_stage_duration_seconds",
			Help:    "Wall time per conversion stage.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skyconv_last_success_timestamp_seconds",
			Help: "Unix time of the last successful conversion.",
		}),
	}
	r.reg.MustRegister(r.recordsRead, r.decoys, r.written, r.adductSuspect, r.stageSeconds, r.lastSuccess)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func (r *Recorder) RecordsRead(format string, n int) {
	r.recordsRead.WithLabelValues(format).Add(float64(n))
}

func (r *Recorder) TransitionsWritten(n int) { r.written.Add(float64(n)) }
func (r *Recorder) Succeeded()               { r.lastSuccess.SetToCurrentTime() }

// transform.Observer

func (r *Recorder) StageDone(stage string, d time.Duration) {
	r.stageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}
func (r *Recorder) DecoysRemoved(n int)    { r.decoys.Add(float64(n)) }
func (r *Recorder) AdductSuspect(_ string) { r.adductSuspect.Inc() }

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
