// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/classgo/classgo/internal/config"
	"github.com/classgo/classgo/internal/logging"
	"github.com/classgo/classgo/internal/metrics"
	"github.com/classgo/classgo/internal/models"
)

// FetchFunc produces the live assignment listing on a cache miss.
type FetchFunc func(ctx context.Context) (*models.AssignmentListResponse, error)

// AssignmentCache is the read-through cache in front of the cross-course
// assignment listing. Keys are per-user; the whole serialized response is
// the cached value.
type AssignmentCache struct {
	backend   Backend
	keyPrefix string
	ttl       time.Duration
	enabled   bool
}

// NewAssignmentCache builds the cache from configuration.
func NewAssignmentCache(backend Backend, cfg config.CacheConfig) *AssignmentCache {
	return &AssignmentCache{
		backend:   backend,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
		enabled:   cfg.Enabled,
	}
}

// Key returns the cache key for one user's assignment listing.
func (c *AssignmentCache) Key(userID string) string {
	return c.keyPrefix + userID
}

// GetOrFetch returns the cached listing for userID, falling back to fetch on
// miss or on any backend error. A fresh result is written back with the
// configured TTL; write failures are swallowed.
func (c *AssignmentCache) GetOrFetch(ctx context.Context, userID string, fetch FetchFunc) (*models.AssignmentListResponse, bool, error) {
	if !c.enabled || c.backend == nil {
		resp, err := fetch(ctx)
		return resp, false, err
	}

	key := c.Key(userID)

	raw, err := c.backend.Get(ctx, key)
	switch {
	case err == nil:
		var cached models.AssignmentListResponse
		if unmarshalErr := json.Unmarshal(raw, &cached); unmarshalErr == nil {
			metrics.CacheHits.Inc()
			return &cached, true, nil
		}
		// Corrupt entry. Drop it and fall through to a live fetch.
		logging.Warn().Str("key", key).Msg("Dropping corrupt cache entry")
		//nolint:errcheck // best-effort cleanup
		c.backend.Delete(ctx, key)
	case errors.Is(err, ErrCacheMiss):
		metrics.CacheMisses.Inc()
	default:
		metrics.CacheErrors.WithLabelValues("get").Inc()
		logging.Warn().Err(err).Str("key", key).Msg("Cache read failed, falling back to live fetch")
	}

	resp, err := fetch(ctx)
	if err != nil {
		return nil, false, err
	}

	if encoded, marshalErr := json.Marshal(resp); marshalErr == nil {
		if setErr := c.backend.Set(ctx, key, encoded, c.ttl); setErr != nil {
			metrics.CacheErrors.WithLabelValues("set").Inc()
			logging.Warn().Err(setErr).Str("key", key).Msg("Cache write failed")
		}
	}

	return resp, false, nil
}

