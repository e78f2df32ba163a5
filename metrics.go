package mirage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mirage",
		Subsystem: "engine",
		Name:      "posts_published_total",
		Help:      "Posts published to the feed, by author kind.",
	}, []string{"author"})

	commentsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mirage",
		Subsystem: "engine",
		Name:      "comments_submitted_total",
		Help:      "Comments submitted by the user.",
	})

	likesToggledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mirage",
		Subsystem: "engine",
		Name:      "likes_toggled_total",
		Help:      "User like toggles applied to feed posts.",
	})
)
