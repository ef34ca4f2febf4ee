package music

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// 搜索结果缓存，容量满时淘汰最久未用的条目。
// 播放直链不进缓存，上游给的 url 带时效。
type searchCache struct {
	lru *expirable.LRU[string, SearchResult]
}

func newSearchCache(size int) *searchCache {
	return &searchCache{
		lru: expirable.NewLRU[string, SearchResult](size, nil, 30*time.Minute),
	}
}

func cacheKey(keyword string, source Source, typ, page int64) string {
	return fmt.Sprintf("%s0v0%s0v0%d0v0%d", keyword, source, typ, page)
}

func (c *searchCache) get(key string) (SearchResult, bool) {
	return c.lru.Get(key)
}

func (c *searchCache) add(key string, r SearchResult) {
	c.lru.Add(key, r)
}
