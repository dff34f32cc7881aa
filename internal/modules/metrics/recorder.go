package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cryptocheck"

// Recorder — метрики конвейера сигналов.
type Recorder struct {
	signals        *prometheus.CounterVec
	fetchErrors    *prometheus.CounterVec
	alertsClosed   *prometheus.CounterVec
	deliveryErrors prometheus.Counter
	openAlerts     prometheus.Gauge
	cycleDuration  prometheus.Histogram
	skippedCycles  prometheus.Counter
}

// NewRegistry — отдельный реестр процесса с go/process коллекторами.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		signals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_emitted_total",
			Help:      "Signals admitted and sent to the alert sink",
		}, []string{"symbol", "direction"}),
		fetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Candle or price fetch failures",
		}, []string{"symbol", "timeframe"}),
		alertsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_closed_total",
			Help:      "Closed alerts by outcome",
		}, []string{"outcome"}),
		deliveryErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_errors_total",
			Help:      "Alert sink delivery failures",
		}),
		openAlerts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_alerts",
			Help:      "Alerts currently tracked",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one evaluation cycle over the universe",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		skippedCycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiet_cycles_total",
			Help:      "Evaluation cycles skipped by quiet hours",
		}),
	}
}

func (r *Recorder) SignalEmitted(symbol, direction string) {
	r.signals.WithLabelValues(symbol, direction).Inc()
}

func (r *Recorder) FetchError(symbol, timeframe string) {
	r.fetchErrors.WithLabelValues(symbol, timeframe).Inc()
}

func (r *Recorder) AlertClosed(outcome string) {
	r.alertsClosed.WithLabelValues(outcome).Inc()
}

func (r *Recorder) DeliveryError() { r.deliveryErrors.Inc() }

func (r *Recorder) SetOpenAlerts(n int) { r.openAlerts.Set(float64(n)) }

func (r *Recorder) ObserveCycle(d time.Duration) { r.cycleDuration.Observe(d.Seconds()) }

func (r *Recorder) QuietCycle() { r.skippedCycles.Inc() }
