package rules

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Cache keeps compiled pattern sets keyed by the enabled regulations so repeated
// scans with the same regulations share one read-only snapshot.
type Cache struct {
	sets   *lru.Cache[string, *PatternSet]
	group  singleflight.Group
	logger hclog.Logger
}

// NewCache creates a cache holding at most size snapshots. A size of zero disables caching.
func NewCache(size int, logger hclog.Logger) (*Cache, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	c := &Cache{logger: logger}
	if size <= 0 {
		return c, nil
	}
	sets, err := lru.New[string, *PatternSet](size)
	if err != nil {
		return nil, err
	}
	c.sets = sets
	return c, nil
}

// Get returns the compiled built-in rules for the enabled regulations.
func (c *Cache) Get(enabled []string) *PatternSet {
	if c.sets == nil {
		return CompileEnabled(enabled, nil, c.logger)
	}

	key := cacheKey(enabled)
	if set, ok := c.sets.Get(key); ok {
		return set
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		if set, ok := c.sets.Get(key); ok {
			return set, nil
		}
		set := CompileEnabled(enabled, nil, c.logger)
		c.sets.Add(key, set)
		return set, nil
	})
	return v.(*PatternSet)
}

// Len returns the amount of cached snapshots.
func (c *Cache) Len() int {
	if c.sets == nil {
		return 0
	}
	return c.sets.Len()
}

// cacheKey normalises the regulation list so that order and duplicates do not matter.
func cacheKey(enabled []string) string {
	seen := make(map[string]struct{}, len(enabled))
	keys := make([]string, 0, len(enabled))
	for _, regulation := range enabled {
		if _, ok := seen[regulation]; ok {
			continue
		}
		seen[regulation] = struct{}{}
		keys = append(keys, regulation)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x00")
}
