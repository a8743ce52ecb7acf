package analytics

import (
	"github.com/prometheus/client_golang/prometheus"

	"whatstoeat/internal/catalog"
)

// MetricsCollector exposes catalog and recommendation activity to Prometheus.
type MetricsCollector struct {
	registry *prometheus.Registry

	catalogSize     prometheus.Gauge
	averagePrice    prometheus.Gauge
	vegetarianCount prometheus.Gauge
	recommendations *prometheus.CounterVec
	ratingsRecorded prometheus.Counter
	importRows      *prometheus.CounterVec
}

// NewMetricsCollector creates a collector with its own registry.
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	mc := &MetricsCollector{
		registry: registry,
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_meals_total",
			Help: "Number of meals currently in the catalog",
		}),
		averagePrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_average_price_dollars",
			Help: "Average meal price across the catalog",
		}),
		vegetarianCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_vegetarian_meals_total",
			Help: "Number of vegetarian meals in the catalog",
		}),
		recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommendations_served_total",
				Help: "Recommendation requests served, by strategy",
			},
			[]string{"strategy"},
		),
		ratingsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ratings_recorded_total",
			Help: "Meal ratings recorded",
		}),
		importRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_rows_total",
				Help: "CSV import rows processed, by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		mc.catalogSize,
		mc.averagePrice,
		mc.vegetarianCount,
		mc.recommendations,
		mc.ratingsRecorded,
		mc.importRows,
	)
	return mc
}

// Registry returns the underlying Prometheus registry for promhttp.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// ObserveCatalog refreshes the catalog gauges from the current state.
func (mc *MetricsCollector) ObserveCatalog(c *catalog.Catalog) {
	mc.catalogSize.Set(float64(c.Len()))
	mc.averagePrice.Set(c.AveragePrice())
	mc.vegetarianCount.Set(float64(c.CountVegetarian()))
}

// RecordRecommendation counts a served recommendation request.
func (mc *MetricsCollector) RecordRecommendation(strategy string) {
	mc.recommendations.WithLabelValues(strategy).Inc()
}

// RecordRating counts a recorded meal rating.
func (mc *MetricsCollector) RecordRating() {
	mc.ratingsRecorded.Inc()
}

// RecordImport counts parsed and rejected rows from a CSV import.
func (mc *MetricsCollector) RecordImport(parsed, rejected int) {
	mc.importRows.WithLabelValues("parsed").Add(float64(parsed))
	mc.importRows.WithLabelValues("rejected").Add(float64(rejected))
}
