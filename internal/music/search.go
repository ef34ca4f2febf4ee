package music

import (
	"github.com/qingting-music/qingting/internal/base"
)

// Strategy 是 auto 模式下的一次候选检索
type Strategy struct {
	Name Source
	Run  func(o SearchOption) SearchResult
}

type Query struct {
	Keyword string
	Source  Source
	Type    int64
	Limit   int64
	Page    int64
}

// Orchestrator 负责策略编排、相关性过滤、结果缓存和搜索历史。
// 服务启动时创建一次，显式传给 HTTP 层。
type Orchestrator struct {
	cache      *searchCache
	history    *History
	strategies []Strategy
	minScore   int
	maxResults int
}

// NewOrchestrator 按配置装配编排器。
// auto 的策略顺序：聚合镜像 → 默认平台 → 最简单源，
// 严格串行，命中即止，并发打散会浪费上游配额。
func NewOrchestrator() *Orchestrator {
	strategies := make([]Strategy, 0, 3)
	for _, s := range []Source{SourceAggregate, SourceNetease, SourceKuwo} {
		if a := Lookup(s); a != nil {
			strategies = append(strategies, Strategy{Name: s, Run: a.Search})
		}
	}
	return &Orchestrator{
		cache:      newSearchCache(int(base.Config.CacheSize)),
		history:    NewHistory(int(base.Config.HistorySize)),
		strategies: strategies,
		minScore:   int(base.Config.MinScore),
		maxResults: int(base.Config.MaxResults),
	}
}

// NewOrchestratorWith 注入自定义策略，测试用
func NewOrchestratorWith(strategies []Strategy, cacheSize, historySize int) *Orchestrator {
	return &Orchestrator{
		cache:      newSearchCache(cacheSize),
		history:    NewHistory(historySize),
		strategies: strategies,
		minScore:   DefaultMinScore,
		maxResults: DefaultMaxResults,
	}
}

func (o *Orchestrator) History() *History {
	return o.history
}

// Search 执行一次检索，失败从不向调用方抛错，
// 所有策略都落空时返回空结果
func (o *Orchestrator) Search(q Query) SearchResult {
	if q.Keyword == "" {
		return SearchResult{}
	}
	if q.Source == "" {
		q.Source = SourceAuto
	}
	if q.Limit <= 0 {
		q.Limit = base.Config.DefaultLimit
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	key := cacheKey(q.Keyword, q.Source, q.Type, q.Page)
	if r, ok := o.cache.get(key); ok {
		return r
	}

	opt := SearchOption{Keyword: q.Keyword, Type: q.Type, Page: q.Page, Limit: q.Limit}

	var result SearchResult
	if q.Source == SourceAuto {
		for _, s := range o.strategies {
			r := s.Run(opt)
			if len(r.Songs) > 0 {
				result = r
				break
			}
			logger.Debug().Str("strategy", string(s.Name)).Str("keyword", q.Keyword).Msg("strategy yielded nothing")
		}
	} else if a := Lookup(q.Source); a != nil {
		result = a.Search(opt)
		result.FromSource = q.Source
	}

	if q.Type == TypeSong {
		result.Songs = FilterAndRank(result.Songs, q.Keyword, o.minScore, o.maxResults)
	}
	if result.Total < int64(len(result.Songs)) {
		result.Total = int64(len(result.Songs))
	}

	o.cache.add(key, result)
	o.history.Add(q.Keyword)
	return result
}

// Suggest 基于搜索历史返回联想词
func (o *Orchestrator) Suggest(prefix string, limit int) []string {
	return o.history.Suggest(prefix, limit)
}
