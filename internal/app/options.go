package service

import (
	"time"

	"github.com/repstats/repstats/internal/adapters/sheets"
	"github.com/repstats/repstats/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSpreadsheet sets the remote source identifier and API key.
func WithSpreadsheet(id, apiKey string) Option {
	return func(s *Service) {
		s.spreadsheetID = id
		s.apiKey = apiKey
	}
}

// WithBaseURL overrides the values-API base URL.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.baseURL = baseURL
	}
}

// WithReader injects a range reader directly, bypassing the HTTP
// client construction. Tests use this.
func WithReader(r sheets.RangeReader) Option {
	return func(s *Service) {
		if r != nil {
			s.reader = r
		}
	}
}

// WithCacheDir sets the persistent tier's directory. An empty value
// keeps the tier in memory.
func WithCacheDir(dir string) Option {
	return func(s *Service) {
		s.cacheDir = dir
	}
}

// WithCacheTTL sets the cache entry time-to-live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued refresh jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithClock overrides the time source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
