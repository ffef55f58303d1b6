// Package metrics exposes Prometheus counters for bot activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal counts received Telegram updates by type.
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lmbatbot_updates_total",
		Help: "Telegram updates received, labeled by update type.",
	}, []string{"type"})

	// CommandsTotal counts handled bot commands by name.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lmbatbot_commands_total",
		Help: "Bot commands handled, labeled by command.",
	}, []string{"command"})

	// MentionNotifications counts hashtag mention notifications sent.
	MentionNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lmbatbot_mention_notifications_total",
		Help: "Hashtag mention notifications dispatched.",
	})

	// WordHits counts tracked word occurrences recorded.
	WordHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lmbatbot_tracked_word_hits_total",
		Help: "Occurrences of tracked words recorded in chat messages.",
	})
)
