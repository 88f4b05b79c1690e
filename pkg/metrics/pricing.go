package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records batch resolution and comparison observations.
type PricingMetrics struct {
	batchDuration *prometheus.HistogramVec
	itemSuccess   *prometheus.CounterVec
	itemFailure   *prometheus.CounterVec
	rows          *prometheus.HistogramVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_batch_duration_seconds",
		Help:    "Duration of batch price resolutions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	itemSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_item_success",
		Help: "Items priced successfully within an operation.",
	}, []string{"operation"})
	itemFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_item_failure",
		Help: "Items that could not be priced within an operation.",
	}, []string{"operation"})
	rows := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_comparison_rows",
		Help:    "Rows produced per supplier comparison.",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
	}, []string{"operation"})
	reg.MustRegister(batchDuration, itemSuccess, itemFailure, rows)
	return &PricingMetrics{
		batchDuration: batchDuration,
		itemSuccess:   itemSuccess,
		itemFailure:   itemFailure,
		rows:          rows,
	}
}

// ObserveBatchDuration records the wall time of the named operation.
func (p *PricingMetrics) ObserveBatchDuration(operation string, duration time.Duration) {
	if p == nil || p.batchDuration == nil {
		return
	}
	p.batchDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// AddItemSuccess adds successfully priced items for the named operation.
func (p *PricingMetrics) AddItemSuccess(operation string, count int) {
	if p == nil || p.itemSuccess == nil || count <= 0 {
		return
	}
	p.itemSuccess.WithLabelValues(normalizeLabel(operation)).Add(float64(count))
}

// AddItemFailure adds failed items for the named operation.
func (p *PricingMetrics) AddItemFailure(operation string, count int) {
	if p == nil || p.itemFailure == nil || count <= 0 {
		return
	}
	p.itemFailure.WithLabelValues(normalizeLabel(operation)).Add(float64(count))
}

// ObserveComparisonRows records how many rows a comparison produced.
func (p *PricingMetrics) ObserveComparisonRows(operation string, count int) {
	if p == nil || p.rows == nil {
		return
	}
	p.rows.WithLabelValues(normalizeLabel(operation)).Observe(float64(count))
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
