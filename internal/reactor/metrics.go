package reactor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reactionLikesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mirage_reactor",
		Name:      "likes_total",
		Help:      "Likes applied by fired reaction tasks.",
	})

	generatedCommentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mirage_reactor",
		Name:      "generated_comments_total",
		Help:      "AI-generated comments appended to posts.",
	})

	gatewayFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mirage_reactor",
		Name:      "gateway_failures_total",
		Help:      "Completion calls that failed and produced no comment.",
	})
)
