package music

import (
	"sync"

	"github.com/qingting-music/qingting/internal/base"
	"github.com/qingting-music/qingting/internal/proxy"
)

// ResolveResult 是一次播放解析的最终产出。失败时 URL 为空，
// LastError 携带最后一次观察到的具体原因，调用方据此给出
// 有针对性的提示而不是笼统的播放失败。
type ResolveResult struct {
	URL          string `json:"url"`
	RawURL       string `json:"raw_url,omitempty"`
	Quality      string `json:"quality"`
	BitrateLabel string `json:"bitrate_label,omitempty"`
	UsedFallback bool   `json:"used_fallback"`
	UsedSource   Source `json:"used_source"`
	LastError    string `json:"error,omitempty"`
}

func (r ResolveResult) OK() bool {
	return r.URL != ""
}

// Resolver 把选中曲目和期望音质换成可播放直链。
// 解析本身无状态，连败计数由外层播放循环持有。
type Resolver struct {
	qualityOrder []string
	altFallback  bool
	alt          Adapter
	router       *proxy.Router
}

func NewResolver(router *proxy.Router) *Resolver {
	return &Resolver{
		qualityOrder: base.Config.QualityOrder,
		altFallback:  base.Config.AltFallback,
		alt:          Lookup(SourceAggregate),
		router:       router,
	}
}

// NewResolverWith 注入音质序列与备选源，测试用
func NewResolverWith(order []string, alt Adapter, router *proxy.Router) *Resolver {
	return &Resolver{
		qualityOrder: order,
		altFallback:  alt != nil,
		alt:          alt,
		router:       router,
	}
}

// qualityQueue 先试请求档位，再按全局序列补齐其余档位
func (rv *Resolver) qualityQueue(requested string) []string {
	queue := make([]string, 0, len(rv.qualityOrder)+1)
	if requested != "" {
		queue = append(queue, requested)
	}
	for _, q := range rv.qualityOrder {
		if q != requested {
			queue = append(queue, q)
		}
	}
	return queue
}

// Resolve 串行走完音质回退队列，必要时升级到备选源。
// 音质尝试严格按序，不并发，命中即止。
func (rv *Resolver) Resolve(song *Song, requested string) ResolveResult {
	adapter := Lookup(song.Source)
	if adapter == nil {
		return ResolveResult{UsedSource: song.Source, LastError: CauseUnavailable}
	}

	queue := rv.qualityQueue(requested)
	lastErr := CauseEmpty
	for _, q := range queue {
		res := adapter.PlayURL(song, q)
		if res.OK() {
			return rv.routed(ResolveResult{
				RawURL:       res.URL,
				Quality:      q,
				BitrateLabel: res.BitrateLabel,
				UsedFallback: q != requested,
				UsedSource:   song.Source,
			}, song)
		}
		if res.Err != "" {
			lastErr = res.Err
		}
		logger.Debug().Str("source", string(song.Source)).Str("quality", q).Str("cause", lastErr).Msg("play url attempt failed")
	}

	// 主源各档位全部落空，换备选源按同名曲目再解析一轮
	if rv.altFallback && rv.alt != nil && rv.alt.Name() != song.Source {
		if r := rv.resolveAlternate(song, queue); r.OK() {
			return r
		}
	}

	return ResolveResult{UsedSource: song.Source, LastError: lastErr}
}

func (rv *Resolver) resolveAlternate(song *Song, queue []string) ResolveResult {
	// 占位歌手不进检索词，否则备选源搜不到同名曲目
	keyword := song.Name
	if line := song.ArtistLine(); line != "" && line != UnknownArtist {
		keyword += " " + line
	}
	sr := rv.alt.Search(SearchOption{Keyword: keyword, Limit: 10, Page: 1, Type: TypeSong})
	top := FilterAndRank(sr.Songs, keyword, 0, 1)
	if len(top) == 0 {
		return ResolveResult{}
	}
	for _, q := range queue {
		res := rv.alt.PlayURL(top[0], q)
		if res.OK() {
			return rv.routed(ResolveResult{
				RawURL:       res.URL,
				Quality:      q,
				BitrateLabel: res.BitrateLabel,
				UsedFallback: true,
				UsedSource:   rv.alt.Name(),
			}, top[0])
		}
	}
	return ResolveResult{}
}

// routed 在返回前套用代理路由，来源作为平台提示
func (rv *Resolver) routed(r ResolveResult, song *Song) ResolveResult {
	r.URL = r.RawURL
	if rv.router != nil {
		hint := ""
		if a := Lookup(song.Source); a != nil && a.NeedsAudioProxy() {
			hint = string(song.Source)
		}
		r.URL = rv.router.Resolve(r.RawURL, hint)
	}
	return r
}

type FailureAction int

const (
	ActionContinue FailureAction = iota
	ActionSwitchSource
	ActionHalt
)

// FailureTracker 供播放循环统计连续解析失败：达到阈值先换源，
// 再失败就停掉自动连播，避免把整个列表烧在一个坏掉的源上。
// 同一个会话的请求可能并发到达，计数加锁。
type FailureTracker struct {
	mu          sync.Mutex
	switchAfter int
	haltAfter   int
	consecutive int
}

func NewFailureTracker() *FailureTracker {
	return &FailureTracker{
		switchAfter: int(base.Config.SwitchAfter),
		haltAfter:   int(base.Config.HaltAfter),
	}
}

func NewFailureTrackerWith(switchAfter, haltAfter int) *FailureTracker {
	return &FailureTracker{switchAfter: switchAfter, haltAfter: haltAfter}
}

func (t *FailureTracker) Success() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consecutive = 0
}

func (t *FailureTracker) Failure() FailureAction {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consecutive++
	switch {
	case t.haltAfter > 0 && t.consecutive >= t.haltAfter:
		return ActionHalt
	case t.switchAfter > 0 && t.consecutive >= t.switchAfter:
		return ActionSwitchSource
	default:
		return ActionContinue
	}
}

func (t *FailureTracker) Consecutive() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consecutive
}
