package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultOutboxBatchSize is how many pending outbox entries one
	// sweep picks up.
	DefaultOutboxBatchSize = 50

	// DefaultOutboxMaxAttempts is the delivery attempt budget before an
	// outbox entry is dead-lettered.
	DefaultOutboxMaxAttempts = 5

	// DefaultOutboxInterval is how often the outbox worker sweeps for
	// pending entries.
	DefaultOutboxInterval = 30 * time.Second
)
