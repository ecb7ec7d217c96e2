package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Prometheus struct {
	generations  *prometheus.CounterVec
	latency      prometheus.Histogram
	cacheLookups *prometheus.CounterVec
	shortfalls   prometheus.Counter
	jobs         *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus 创建并注册所有指标，reg 为 nil 时使用默认的 Registerer
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "duty_roster"
	}

	p := &Prometheus{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "generations_total",
			Help:      "Total roster generations by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "generation_seconds",
			Help:      "Roster generation latency in seconds, including cross-roster recomputation.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms .. ~10s
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "cache_lookups_total",
			Help:      "Standalone roster cache lookups by outcome (hit, miss).",
		}, []string{"outcome"}),
		shortfalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "shortfalls_total",
			Help:      "Total (date, requirement) slots left understaffed under the underfill policy.",
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Generation jobs handled by the worker, by outcome (ack, reject, requeue).",
		}, []string{"outcome"}),
	}

	reg.MustRegister(p.generations, p.latency, p.cacheLookups, p.shortfalls, p.jobs)

	return p
}

func (p *Prometheus) ObserveGeneration(result string, duration time.Duration) {
	p.generations.WithLabelValues(result).Inc()
	p.latency.Observe(duration.Seconds())
}

func (p *Prometheus) ObserveCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	p.cacheLookups.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) AddShortfalls(count int) {
	if count > 0 {
		p.shortfalls.Add(float64(count))
	}
}

func (p *Prometheus) ObserveJob(outcome string) {
	p.jobs.WithLabelValues(outcome).Inc()
}

// Handler 暴露 /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
