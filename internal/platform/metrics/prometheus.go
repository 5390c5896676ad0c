package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
)

// Manager holds the service's Prometheus metrics on a private registry.
type Manager struct {
	Registry *prometheus.Registry

	ListingsCreatedTotal prometheus.Counter
	ListingUpdatesTotal  prometheus.Counter
	ListingDeletesTotal  prometheus.Counter

	MediaObjectsDeletedTotal prometheus.Counter
	MediaDeleteFailuresTotal prometheus.Counter

	APIErrorsTotal *prometheus.CounterVec
	APILatency     *prometheus.HistogramVec
}

func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	listingsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	})
	listingUpdates := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_updates_total",
		Help:      "Total number of listings updated.",
	})
	listingDeletes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_deletes_total",
		Help:      "Total number of listings deleted.",
	})
	mediaDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "media_objects_deleted_total",
		Help:      "Total number of media objects removed from the object store.",
	})
	mediaDeleteFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "media_delete_failures_total",
		Help:      "Total number of media object deletions that the store rejected.",
	})
	apiErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by operation.",
	}, []string{"operation", "kind"})
	apiLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	registry.MustRegister(
		listingsCreated,
		listingUpdates,
		listingDeletes,
		mediaDeleted,
		mediaDeleteFailures,
		apiErrors,
		apiLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:                 registry,
		ListingsCreatedTotal:     listingsCreated,
		ListingUpdatesTotal:      listingUpdates,
		ListingDeletesTotal:      listingDeletes,
		MediaObjectsDeletedTotal: mediaDeleted,
		MediaDeleteFailuresTotal: mediaDeleteFailures,
		APIErrorsTotal:           apiErrors,
		APILatency:               apiLatency,
	}
}

// StartServer exposes /metrics on its own port. Blocks; run in a goroutine.
func StartServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))
	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
