package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MediaUploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupo_media_uploads_total",
		Help: "Media files successfully stored.",
	})
	StorageFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupo_storage_fallbacks_total",
		Help: "Object storage uploads that fell back to local disk.",
	})
	PushSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupo_push_sent_total",
		Help: "Push notifications accepted by a gateway.",
	})
	PushFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupo_push_failed_total",
		Help: "Push notifications that failed to deliver.",
	})
)
