package crud

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordInserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hauldesk_record_inserts_total",
		Help: "Number of records created, per collection",
	}, []string{"collection"})
	recordUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hauldesk_record_updates_total",
		Help: "Number of records updated, per collection",
	}, []string{"collection"})
	recordDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hauldesk_record_deletes_total",
		Help: "Number of records removed, soft or physical, per collection",
	}, []string{"collection"})
)
