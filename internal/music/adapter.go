package music

import "sort"

// Adapter 封装单个上游曲库的搜索、取链和歌词请求。
// 所有实现都不跨边界抛错：失败返回空结果或带 Err 的哨兵值，
// 由上层编排器决定是否换源重试。
type Adapter interface {
	Name() Source
	Search(o SearchOption) SearchResult
	PlayURL(song *Song, quality string) PlayURLResult
	Lyric(song *Song) LyricResult

	// NeedsAudioProxy 为 true 时，该源解析出的音频地址必须
	// 走平台专用代理，CDN 校验 Referer 且拒绝跨域 Range 请求
	NeedsAudioProxy() bool
}

var registry = map[Source]Adapter{}

func Register(a Adapter) {
	registry[a.Name()] = a
}

// Lookup 按来源取适配器，未注册返回 nil
func Lookup(s Source) Adapter {
	return registry[s]
}

// Sources 返回已注册的来源列表，输出稳定
func Sources() []Source {
	ss := make([]Source, 0, len(registry))
	for s := range registry {
		ss = append(ss, s)
	}
	sort.Slice(ss, func(i, j int) bool { return ss[i] < ss[j] })
	return ss
}

func init() {
	Register(&neteaseAdapter{})
	Register(&qqAdapter{})
	Register(&kugouAdapter{})
	Register(&kuwoAdapter{})
	Register(&bilibiliAdapter{})
	Register(&aggregateAdapter{})
}
