// Package kv provides the durable key-value storage the collection stores
// persist through. Values are whole serialized collections written under a
// handful of fixed keys; the contract is plain last-write-wins get/set/remove
// on string keys.
package kv

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Store is the persistence adapter contract.
type Store interface {
	// Get returns the last-written value for key. ok is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set durably overwrites the value for key.
	Set(ctx context.Context, key string, value string) error
	// Remove deletes the value for key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

var writeFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kv_write_failures_total",
		Help: "Total number of failed key-value writes, by key",
	},
	[]string{"key"},
)

// WriteFailuresCollector exposes the write-failure counter so the metrics
// middleware can register it on its own registry.
func WriteFailuresCollector() prometheus.Collector {
	return writeFailures
}

// IncWriteFailure records a failed durable write for key. Stores call this
// when they keep serving from memory after a persist failure.
func IncWriteFailure(key string) {
	writeFailures.WithLabelValues(key).Inc()
}
