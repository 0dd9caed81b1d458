package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const service = "streamchron"

var defaultBuckets = []float64{5, 10, 20, 50, 100, 200, 500, 1000}

// prometheusMiddleware exposes request counters/latencies for the Ingest
// Server and mint counters for the Archivist pipeline, the same ConstLabels
// idiom cmd/livesim2/app/prometheus.go uses for its own service metrics.
type prometheusMiddleware struct {
	ingestReqs    *prometheus.CounterVec
	ingestLatency *prometheus.HistogramVec
	mintedNodes   *prometheus.CounterVec
	chatMessages  *prometheus.CounterVec
}

var metrics prometheusMiddleware

func init() {
	metrics.ingestReqs = newCounter("ingest_requests_total",
		"Number of ingest PUT requests processed, partitioned by status code.", []string{"code"})
	metrics.ingestLatency = newHistogram("ingest_request_duration_milliseconds",
		"Ingest PUT response latency.", defaultBuckets, []string{"code"})
	metrics.mintedNodes = newCounter("dag_nodes_minted_total",
		"Number of DAG nodes minted, partitioned by node kind.", []string{"kind"})
	metrics.chatMessages = newCounter("chat_messages_total",
		"Number of chat pubsub messages processed, partitioned by outcome.", []string{"outcome"})
}

// NewPrometheusMiddleware returns the chi middleware that records ingest
// request counts and latencies.
func NewPrometheusMiddleware() func(next http.Handler) http.Handler {
	return metrics.handler
}

func (mw prometheusMiddleware) handler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := strconv.Itoa(ww.Status())
		latencyMS := float64(time.Since(start).Nanoseconds()) * 1e-6
		mw.ingestReqs.WithLabelValues(status).Inc()
		mw.ingestLatency.WithLabelValues(status).Observe(latencyMS)
	}
	return http.HandlerFunc(fn)
}

// RecordMinted increments the minted-node counter for the given node kind
// ("setup", "video", "chat", "second", "minute", "hour", "day", "root").
func RecordMinted(kind string) {
	metrics.mintedNodes.WithLabelValues(kind).Inc()
}

// RecordChatOutcome increments the chat-message counter for one outcome
// ("accepted", "banned", "rejected").
func RecordChatOutcome(outcome string) {
	metrics.chatMessages.WithLabelValues(outcome).Inc()
}

func newCounter(name, help string, labels []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        name,
			Help:        help,
			ConstLabels: prometheus.Labels{"service": service},
		},
		labels,
	)
	prometheus.MustRegister(cv)
	return cv
}

func newHistogram(name, help string, buckets []float64, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        name,
		Help:        help,
		ConstLabels: prometheus.Labels{"service": service},
		Buckets:     buckets,
	},
		labels,
	)
	prometheus.MustRegister(h)
	return h
}
