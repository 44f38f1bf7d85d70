package storagemodels

import "time"

// DocumentResult is a single raw document in a streamed find, with metadata.
type DocumentResult struct {
	Doc   RawDocument // The raw stored document
	Error error       // Item-specific error, if any
	Meta  StreamMeta  // Metadata about this item
}

// StreamMeta contains metadata about a streamed document
type StreamMeta struct {
	Index      int64 // Item index in stream (0-based)
	PageNumber int   // Storage page number (1-based)
}

// StreamOptions configures streaming behavior
type StreamOptions struct {
	BufferSize   int           // Channel buffer size (default: 100)
	MaxRetries   int           // Retry attempts for transient errors (default: 3)
	RetryBackoff time.Duration // Backoff between retries (default: 1s)
	PageSize     int32         // Items per storage page (default: 100)
}

// StreamOption is a functional option for configuring streaming
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns default streaming options
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		BufferSize:   100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		PageSize:     100,
	}
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries int) StreamOption {
	return func(opts *StreamOptions) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the retry backoff duration
func WithRetryBackoff(backoff time.Duration) StreamOption {
	return func(opts *StreamOptions) {
		opts.RetryBackoff = backoff
	}
}

// WithPageSize sets the storage page size
func WithPageSize(size int32) StreamOption {
	return func(opts *StreamOptions) {
		opts.PageSize = size
	}
}
