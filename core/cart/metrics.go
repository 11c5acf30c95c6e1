package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of cart mutations",
		},
		[]string{"op"}, // "add", "set", "remove", "clear"
	)

	rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_rejections_total",
			Help: "Total number of cart mutations refused by the stock guard",
		},
		[]string{"reason"}, // "not_found", "out_of_stock"
	)
)
