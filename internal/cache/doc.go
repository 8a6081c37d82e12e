// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package cache provides a generic, thread-safe LRU cache with TTL support.

The recommendation engine uses it to memoize query results: a request for the
same resolved movie and result count is answered from memory until the entry
expires or a new model is loaded.

# Usage

	c := cache.NewLRU[*recommend.Response](10000, 5*time.Minute)
	c.Add(key, resp)
	if resp, ok := c.Get(key); ok {
	    // serve cached response
	}

# Thread Safety

All methods take an internal mutex. Values are returned as stored, so callers
that mutate cached values must copy them first.
*/
package cache
