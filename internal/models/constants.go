package models

const (
	// DefaultPageSize is used when a listing request carries no size.
	DefaultPageSize = 20

	// MaxPageSize caps a single listing page.
	MaxPageSize = 100

	// RateLimitRequests per RateLimitWindow seconds per client.
	RateLimitRequests = 30
	RateLimitWindow   = 60

	// ExportQueueSize bounds the background export worker queue.
	ExportQueueSize = 100
)
