// Copyright 2026 The pgbind authors
// Licensed under Apache 2.0, see LICENCE file for details.

package pgbind

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Queries above either threshold bypass the plan caches and are parsed fresh
// on every call. Bulk-generated statements (multi-row VALUES lists with a
// varying number of tuples) have poor hit rates and would otherwise grow the
// caches without bound.
const (
	maxCachedQueryLength = 4096
	maxCachedQueryParams = 50
)

// planCacheSize is the capacity of each plan cache.
const planCacheSize = 128

// planKey identifies a cached plan. The encoding is part of the key: the
// same query bytes may scan differently under different client encodings.
type planKey struct {
	query    string
	encoding string
}

// planCache memoizes scanner+assembler output in a fixed-capacity LRU.
// Lookups and insertions are safe for concurrent use. Two callers racing on
// the same key both compute byte-for-byte identical plans, so either insert
// may win; the pipeline is never serialized behind a lock.
type planCache[P any] struct {
	plans        *lru.Cache[planKey, P]
	hits, misses atomic.Uint64
}

func newPlanCache[P any](size int) *planCache[P] {
	plans, err := lru.New[planKey, P](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &planCache[P]{plans: plans}
}

// getOrAdd returns the plan cached under key, computing and inserting it on
// a miss. assemble runs outside any cache lock.
func (c *planCache[P]) getOrAdd(key planKey, assemble func() (P, error)) (P, error) {
	if plan, ok := c.plans.Get(key); ok {
		c.hits.Add(1)
		return plan, nil
	}
	c.misses.Add(1)
	plan, err := assemble()
	if err != nil {
		var zero P
		return zero, err
	}
	c.plans.Add(key, plan)
	return plan, nil
}

func (c *planCache[P]) len() int {
	return c.plans.Len()
}

func (c *planCache[P]) contains(key planKey) bool {
	return c.plans.Contains(key)
}

// purge empties the cache and resets its counters.
func (c *planCache[P]) purge() {
	c.plans.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
}

// The plan caches are package-wide and live for the whole process. They hold
// only immutable plans, no external resources, so they need no teardown. The
// two binding strategies keep independent caches since their outputs differ.
var (
	serverPlans = newPlanCache[*serverPlan](planCacheSize)
	clientPlans = newPlanCache[*clientPlan](planCacheSize)
)

// cacheable reports whether a query and parameter set may enter the plan
// caches.
func cacheable(raw []byte, params boundParams) bool {
	return len(raw) <= maxCachedQueryLength && params.count() <= maxCachedQueryParams
}
