package scan

import "github.com/zhangyunhao116/skipmap"

// planCacheMap is a concurrent skiplist map: a lock-free ordered map safe
// for concurrent readers and writers without a surrounding mutex.
type planCacheMap = skipmap.FuncMap[uint64, Plan]

// PlanCache memoizes Plan by snapshot id. The admin HTTP surface shares one
// PlanCache across requests so that repeated /scan calls against a snapshot
// that has already been resolved skip the manifest read entirely; it holds
// nothing for ad-hoc manifest-list plans, which have no snapshot id to key
// on.
type PlanCache struct {
	m *planCacheMap
}

// NewPlanCache builds an empty cache.
func NewPlanCache() *PlanCache {
	return &PlanCache{
		m: skipmap.NewFunc[uint64, Plan](func(a, b uint64) bool { return a < b }),
	}
}

// Get returns the cached plan for snapshotID, if any.
func (c *PlanCache) Get(snapshotID uint64) (Plan, bool) {
	return c.m.Load(snapshotID)
}

// Put records plan under its own SnapshotID. A plan built from a
// ManifestListPath request (SnapshotID == nil) is not cached.
func (c *PlanCache) Put(plan Plan) {
	if plan.SnapshotID == nil {
		return
	}
	c.m.Store(*plan.SnapshotID, plan)
}

// Invalidate drops any cached plan for snapshotID.
func (c *PlanCache) Invalidate(snapshotID uint64) {
	c.m.Delete(snapshotID)
}
