package metrics

import (
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    generationReqs = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "decknotes",
            Name:      "generation_requests_total",
            Help:      "Total text-generation requests by provider, model and result",
        },
        []string{"provider", "model", "result"},
    )

    generationLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "decknotes",
            Name:      "generation_request_duration_seconds",
            Help:      "Duration of text-generation requests by provider and model",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"provider", "model"},
    )

    generationRetries = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "decknotes",
            Name:      "generation_retries_total",
            Help:      "Total text-generation retries",
        },
    )

    cacheLookups = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "decknotes",
            Name:      "annotation_cache_lookups_total",
            Help:      "Annotation cache lookups by result (hit, miss)",
        },
        []string{"result"},
    )

    pagesProcessed = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "decknotes",
            Name:      "pages_processed_total",
            Help:      "Pages composed into the output document",
        },
    )

    renderLatency = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "decknotes",
            Name:      "fragment_render_duration_seconds",
            Help:      "Duration of external fragment render invocations",
            Buckets:   prometheus.DefBuckets,
        },
    )
)

// Init registers collectors.
func Init() {
    prometheus.MustRegister(generationReqs, generationLatency, generationRetries, cacheLookups, pagesProcessed, renderLatency)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveGeneration(provider, model, result string, dur time.Duration) {
    generationReqs.WithLabelValues(provider, model, result).Inc()
    generationLatency.WithLabelValues(provider, model).Observe(dur.Seconds())
}

func IncGenerationRetry() { generationRetries.Inc() }

func IncCacheLookup(hit bool) {
    if hit {
        cacheLookups.WithLabelValues("hit").Inc()
        return
    }
    cacheLookups.WithLabelValues("miss").Inc()
}

func IncPageProcessed() { pagesProcessed.Inc() }

func ObserveRender(dur time.Duration) { renderLatency.Observe(dur.Seconds()) }
