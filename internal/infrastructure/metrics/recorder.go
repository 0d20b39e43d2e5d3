package metrics

import (
	"context"
	"net/http"
	"time"

	"voice-browser/internal/application/port/output"
	"voice-browser/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ output.MetricsPort = (*Recorder)(nil)

type Recorder struct {
	registry *prometheus.Registry

	TurnsTotal      *prometheus.CounterVec
	TurnDuration    *prometheus.HistogramVec
	CompletionCalls *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		TurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_turns_total",
				Help: "Turns handled, by resolved intent",
			},
			[]string{"intent"},
		),
		TurnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navigator_turn_duration_seconds",
				Help:    "Wall time of one turn",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20},
			},
			[]string{"intent"},
		),
		CompletionCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_completion_calls_total",
				Help: "Text-generation calls, by outcome",
			},
			[]string{"outcome"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_summary_cache_lookups_total",
				Help: "Summary cache lookups, by result",
			},
			[]string{"result"},
		),
	}
}

func (r *Recorder) ObserveTurn(intent string, duration time.Duration) {
	r.TurnsTotal.WithLabelValues(intent).Inc()
	r.TurnDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

type instrumentedCompleter struct {
	next     output.TextCompleter
	recorder *Recorder
}

func InstrumentCompleter(next output.TextCompleter, r *Recorder) output.TextCompleter {
	return &instrumentedCompleter{next: next, recorder: r}
}

func (c *instrumentedCompleter) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := c.next.Generate(ctx, prompt)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.recorder.CompletionCalls.WithLabelValues(outcome).Inc()
	return text, err
}

type instrumentedCache struct {
	next     output.SummaryCache
	recorder *Recorder
}

func InstrumentCache(next output.SummaryCache, r *Recorder) output.SummaryCache {
	return &instrumentedCache{next: next, recorder: r}
}

func (c *instrumentedCache) Get(ctx context.Context, url string) (entity.CacheEntry, bool) {
	e, ok := c.next.Get(ctx, url)
	result := "miss"
	if ok {
		result = "hit"
	}
	c.recorder.CacheLookups.WithLabelValues(result).Inc()
	return e, ok
}

func (c *instrumentedCache) Put(ctx context.Context, url string, entry entity.CacheEntry) {
	c.next.Put(ctx, url, entry)
}
