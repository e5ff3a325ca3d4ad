// Domain event counters.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	recordsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_records_created_total",
			Help: "Total number of mood records created, by initial visibility.",
		},
		[]string{"visibility"},
	)

	empathyEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_empathy_events_total",
			Help: "Total number of effective empathy placements and withdrawals.",
		},
		[]string{"op"},
	)

	presetMessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_preset_messages_total",
			Help: "Total number of preset comfort messages delivered.",
		},
	)

	feedViewsMarked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_views_marked_total",
			Help: "Total number of feed items charged against a daily quota.",
		},
	)
)

func init() {
	prometheus.MustRegister(recordsCreated, empathyEvents, presetMessagesSent, feedViewsMarked)
}
