// Package observability provides tracing and prometheus collectors.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImagesStored counts files written by the image store, by category.
	ImagesStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resalehub_images_stored_total",
		Help: "Total number of uploaded images written to disk",
	}, []string{"category"})

	// ImageDeleteFailures counts image removals that failed and were swallowed.
	ImageDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resalehub_image_delete_failures_total",
		Help: "Total number of image files that could not be removed",
	})

	// UsersDeleted counts completed user deletions by mode (soft or hard).
	UsersDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resalehub_users_deleted_total",
		Help: "Total number of deleted users by mode",
	}, []string{"mode"})

	// RedisErrors counts failed redis commands.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resalehub_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)
