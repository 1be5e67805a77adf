package services

import "errors"

var (
	// ErrPublisherNotFound means the requested publisher is not registered
	// locally; a sync run cannot start without its API token.
	ErrPublisherNotFound = errors.New("publisher not found")

	// ErrUpstreamFailure wraps affiliate API failures. Items upserted before
	// the failure stay committed; the batch as a whole is reported failed.
	ErrUpstreamFailure = errors.New("affiliate API request failed")
)
