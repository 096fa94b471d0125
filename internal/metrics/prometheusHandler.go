package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var documentsIndexed = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "documents_indexed",
	Help: "Number of documents currently in the knowledge base",
})

var chunksIndexed = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "chunks_indexed",
	Help: "Number of chunks currently in the vector index",
})

var answerCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "answer_cache_hits_total",
	Help: "Search requests served from the answer cache",
})

var fallbackAnswersTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fallback_answers_total",
	Help: "Answers produced by the extractive fallback instead of the generation service",
})

var searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "search_request_duration_seconds",
	Help:    "Total time spent answering one search request.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func SetDocumentsIndexed(count int) {
	documentsIndexed.Set(float64(count))
}

func SetChunksIndexed(count int) {
	chunksIndexed.Set(float64(count))
}

func IncrementCacheHits() {
	answerCacheHits.Inc()
}

func IncrementFallbackAnswers() {
	fallbackAnswersTotal.Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureSearchMetrics(label string, timeElapsed time.Duration) {
	searchDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
