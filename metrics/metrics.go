package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for taskmind
type Metrics struct {
	// Task execution
	TasksTotal *prometheus.CounterVec
	LLMLatency *prometheus.HistogramVec

	// Storage
	FeedbackTotal      prometheus.Counter
	HistoryTotal       prometheus.Counter
	SQLiteBusyErrors   prometheus.Counter
	SQLiteLockedErrors prometheus.Counter
	SQLiteSlowQueries  prometheus.Counter

	// Knowledge
	VectorErrors *prometheus.CounterVec
	CrawlItems   prometheus.Counter

	// Fine-tuning
	FineTuneRuns *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// Get returns the process-wide metrics, registering them on first use.
func Get() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			TasksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskmind_tasks_total",
					Help: "Executed tasks by outcome",
				},
				[]string{"outcome"},
			),
			LLMLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "taskmind_llm_latency_seconds",
					Help:    "Language model call latency in seconds",
					Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
				},
				[]string{"provider"},
			),
			FeedbackTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "taskmind_feedback_total",
				Help: "Feedback records stored",
			}),
			HistoryTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "taskmind_history_total",
				Help: "History records stored",
			}),
			SQLiteBusyErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "taskmind_sqlite_busy_errors_total",
				Help: "Total SQLite busy errors observed",
			}),
			SQLiteLockedErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "taskmind_sqlite_locked_errors_total",
				Help: "Total SQLite locked errors observed",
			}),
			SQLiteSlowQueries: promauto.NewCounter(prometheus.CounterOpts{
				Name: "taskmind_sqlite_slow_queries_total",
				Help: "Statements slower than SQLITE_SLOW_QUERY_MS",
			}),
			VectorErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskmind_vector_errors_total",
					Help: "Vector backend errors by operation",
				},
				[]string{"op"},
			),
			CrawlItems: promauto.NewCounter(prometheus.CounterOpts{
				Name: "taskmind_crawl_items_total",
				Help: "Scraped items ingested into the vector backend",
			}),
			FineTuneRuns: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskmind_finetune_runs_total",
					Help: "Fine-tune runs by final status",
				},
				[]string{"status"},
			),
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskmind_http_requests_total",
					Help: "HTTP requests by route and status",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "taskmind_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
		}
	})
	return sharedMetrics
}
