// Package config describes how to bring up a vault and engine: the default
// request TTL and query channel capacity, following the same functional-
// options idiom the teacher's store.OpenStore(..., options ...Option) uses
// to configure its Store before opening it.
package config

import "time"

// Config holds the tunables engine.New reads at startup. Its zero value is
// invalid; use Default() and apply Options.
type Config struct {
	// RequestTTL bounds how long a deferred AddDoc/AddEntry checklist
	// obligation is allowed to persist when the request itself gives no
	// positive TTL; on expiry the request receives
	// engine.FailedSchemaCheck.
	RequestTTL time.Duration

	// QueryCapacity is the default result-channel buffer size passed to
	// Db.Query when a caller doesn't specify one.
	QueryCapacity int
}

// Default returns the configuration condensedb uses when no options are
// given.
func Default() Config {
	return Config{
		RequestTTL:    30 * time.Second,
		QueryCapacity: 16,
	}
}

// Option mutates a Config during New.
type Option func(*Config)

// WithRequestTTL overrides the default deferred-checklist TTL.
func WithRequestTTL(d time.Duration) Option {
	return func(c *Config) { c.RequestTTL = d }
}

// WithQueryCapacity overrides the default query result-channel capacity.
func WithQueryCapacity(n int) Option {
	return func(c *Config) { c.QueryCapacity = n }
}

// New builds a Config from Default() plus the given options, in order.
func New(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
