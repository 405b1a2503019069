package providers

import (
	"counterd/internal/models"
	"counterd/internal/structures"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncPersistenceErrors()
}

// StoreStatsSource is the read side of the counter store the gauges sample.
type StoreStatsSource interface {
	GetChannels() ([]*models.Channel, error)
	GetAllUninstallRequests(channel string) ([]*models.UninstallRequest, error)
	GetAllBosses(channel string) ([]*models.Boss, error)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	persistenceErrors   prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncPersistenceErrors() {
	m.persistenceErrors.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "counterd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "counterd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "counterd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "counterd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "counterd_persistence_duration_seconds",
			Help:    "Duration of snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		persistenceErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "counterd_persistence_errors_total",
			Help: "Total number of failed snapshot writes",
		}),
	}
}

// RegisterStoreGauges exposes channel and entity totals sampled from the
// store at scrape time.
func RegisterStoreGauges(conf *structures.Config, store StoreStatsSource) {
	if !conf.Metrics.Enabled {
		return
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "counterd_channels_total",
		Help: "Total number of channels",
	}, func() float64 {
		channels, err := store.GetChannels()
		if err != nil {
			return 0
		}
		return float64(len(channels))
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "counterd_uninstall_requests_total",
		Help: "Number of tracked programs across all channels",
	}, func() float64 {
		return float64(sumPerChannel(store, func(ch string) (int, error) {
			reqs, err := store.GetAllUninstallRequests(ch)
			return len(reqs), err
		}))
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "counterd_bosses_total",
		Help: "Number of tracked bosses across all channels",
	}, func() float64 {
		return float64(sumPerChannel(store, func(ch string) (int, error) {
			bosses, err := store.GetAllBosses(ch)
			return len(bosses), err
		}))
	})
}

func sumPerChannel(store StoreStatsSource, count func(channel string) (int, error)) int {
	channels, err := store.GetChannels()
	if err != nil {
		return 0
	}
	total := 0
	for _, ch := range channels {
		n, err := count(ch.ID)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncPersistenceErrors()                            {}
