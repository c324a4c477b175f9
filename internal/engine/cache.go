package engine

import (
	"time"

	"github.com/toyz/splice/internal/utils"
)

// PlanCache memoizes successful injector plans by fingerprint so unchanged
// injectors are not resolved again across builds. Failed builds are never
// cached.
type PlanCache struct {
	plans *utils.Cache[Fingerprint, *InjectorPlan]
}

// NewPlanCache creates a plan cache whose entries expire after ttl. A negative
// ttl keeps plans until the cache is cleared.
func NewPlanCache(ttl time.Duration) *PlanCache {
	return &PlanCache{plans: utils.NewCacheWithExpiration[Fingerprint, *InjectorPlan](ttl, utils.DefaultCacheCleanupInterval)}
}

// Get returns the cached plan for fp
func (c *PlanCache) Get(fp Fingerprint) (*InjectorPlan, bool) {
	return c.plans.Get(fp)
}

// Put stores a plan under its fingerprint
func (c *PlanCache) Put(plan *InjectorPlan) {
	c.plans.Set(plan.Fingerprint, plan)
}

// Clear drops every cached plan
func (c *PlanCache) Clear() {
	c.plans.Clear()
}

// Stats returns hit and miss counters
func (c *PlanCache) Stats() utils.CacheStats {
	return c.plans.GetStats()
}
