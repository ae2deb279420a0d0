package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ProductsScanned *prometheus.CounterVec
	CatalogLoads    *prometheus.CounterVec
}

// NewMetrics registers the event counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProductsScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bipagem",
			Name:      "products_scanned_total",
			Help:      "Products marked as scanned, per store and scan source.",
		}, []string{"store", "source"}),
		CatalogLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bipagem",
			Name:      "catalog_loads_total",
			Help:      "Catalog loads, per store and load mode.",
		}, []string{"store", "mode"}),
	}
}
