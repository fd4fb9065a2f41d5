package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/autopark/internal/park"
)

// Exporter publishes live maneuver state to Prometheus. It is a
// park.Observer and is safe to scrape while the maneuver runs.
type Exporter struct {
	registry    *prometheus.Registry
	ticks       prometheus.Counter
	reinits     prometheus.Counter
	output      prometheus.Gauge
	trackErr    prometheus.Gauge
	filtered    prometheus.Gauge
	gapTicks    prometheus.Gauge
	state       prometheus.Gauge
	transitions *prometheus.CounterVec
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autopark_ticks_total",
			Help: "Space-finding ticks executed.",
		}),
		reinits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autopark_steering_reinits_total",
			Help: "Steering re-initializations after an abnormal error.",
		}),
		output: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autopark_steering_output",
			Help: "Last correction applied to the motors.",
		}),
		trackErr: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autopark_tracking_error",
			Help: "Last wall-following error in sensor units.",
		}),
		filtered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autopark_filtered_distance",
			Help: "Last filtered side distance in sensor units.",
		}),
		gapTicks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autopark_gap_ticks",
			Help: "Consecutive ticks the side reading exceeded the gap distance.",
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autopark_state",
			Help: "Maneuver state: 0 seeking_space, 1 rotating, 2 reversing, 3 done.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autopark_transitions_total",
			Help: "State transitions.",
		}, []string{"from", "to"}),
	}
	e.registry.MustRegister(e.ticks, e.reinits, e.output, e.trackErr, e.filtered, e.gapTicks, e.state, e.transitions)
	return e
}

func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

func (e *Exporter) OnTick(rec park.TickRecord) {
	e.ticks.Inc()
	if rec.Reinit {
		e.reinits.Inc()
	}
	e.gapTicks.Set(float64(rec.GapTicks))
	if rec.Found {
		return
	}
	e.output.Set(float64(rec.Output))
	e.trackErr.Set(float64(rec.Error))
	e.filtered.Set(float64(rec.Filtered))
}

func (e *Exporter) OnTransition(from, to park.State) {
	e.state.Set(float64(to))
	e.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve exposes /metrics on addr until ctx is canceled.
func (e *Exporter) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("[metrics] shutdown: %v", err)
		}
	}()

	log.Infof("[metrics] serving on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
