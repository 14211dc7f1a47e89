// Package cache holds completed run envelopes for a short while so callers
// can re-fetch a result by job id. This sits outside the pipeline core: the
// pipeline itself keeps nothing across requests.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/clipcheck/clipcheck/internal/model"
)

// ResultStore is a TTL store of completed pipeline results keyed by job id
type ResultStore struct {
	cache *gocache.Cache
}

// NewResultStore creates a store whose entries expire after ttl
func NewResultStore(ttl time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResultStore{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

// Put stores a completed result under the given job id
func (s *ResultStore) Put(jobID string, result *model.Result) {
	s.cache.SetDefault(jobID, result)
}

// Get retrieves a stored result, reporting whether it was found
func (s *ResultStore) Get(jobID string) (*model.Result, bool) {
	if v, found := s.cache.Get(jobID); found {
		return v.(*model.Result), true
	}
	return nil, false
}

// Delete drops a stored result
func (s *ResultStore) Delete(jobID string) {
	s.cache.Delete(jobID)
}

// Len reports how many results are currently stored
func (s *ResultStore) Len() int {
	return s.cache.ItemCount()
}
