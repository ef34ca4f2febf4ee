package music

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// 上游缺省字段的占位值，归一化后不允许出现空值
const (
	UnknownAlbum  = "未知专辑"
	UnknownArtist = "未知歌手"
)

type Source string

const (
	SourceNetease   Source = "netease"
	SourceQQ        Source = "qq"
	SourceKugou     Source = "kugou"
	SourceKuwo      Source = "kuwo"
	SourceBilibili  Source = "bilibili"
	SourceAggregate Source = "aggregate"
	SourceAuto      Source = "auto"
)

// ParseSource 归一化来源别名，未知来源回落到 auto
func ParseSource(s string) Source {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "netease", "wy", "163":
		return SourceNetease
	case "qq", "tencent":
		return SourceQQ
	case "kugou", "kg":
		return SourceKugou
	case "kuwo", "kw":
		return SourceKuwo
	case "bilibili", "bili", "db":
		return SourceBilibili
	case "aggregate", "gd":
		return SourceAggregate
	default:
		return SourceAuto
	}
}

// 搜索类型，与上游 cloudsearch 的取值保持一致
const (
	TypeSong     = 0
	TypeArtist   = 1
	TypePlaylist = 1000
)

// Song 是各上游曲目归一化后的通用结构，构造完成后只读
type Song struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Artist   []string `json:"artist"`
	Album    string   `json:"album"`
	Source   Source   `json:"source"`
	PicID    string   `json:"pic_id,omitempty"`
	Cover    string   `json:"cover,omitempty"`
	LyricID  string   `json:"lyric_id,omitempty"`
	Duration int64    `json:"duration,omitempty"` // 秒
	WebURL   string   `json:"web_url,omitempty"`

	// Provider 记录聚合源背后真正的子平台
	Provider string `json:"provider,omitempty"`
}

// ArtistLine 返回用于展示和相关性计算的歌手串
func (s *Song) ArtistLine() string {
	return strings.Join(s.Artist, ", ")
}

// Key 返回去重用的唯一键
func (s *Song) Key() string {
	if s.ID != "" {
		return string(s.Source) + "OvO" + s.ID
	}
	return strings.ToLower(s.Name + "|" + s.ArtistLine())
}

type SearchResult struct {
	Songs      []*Song `json:"songs"`
	Total      int64   `json:"total"`
	FromSource Source  `json:"from_source"`
}

// PlayURLResult 不做缓存，上游返回的播放链接带时效
type PlayURLResult struct {
	URL          string `json:"url"`
	Quality      string `json:"quality"`
	BitrateLabel string `json:"bitrate_label"`
	Source       Source `json:"source"`
	Err          string `json:"-"`
}

func (r PlayURLResult) OK() bool {
	return r.URL != ""
}

type LyricResult struct {
	Lyric  string `json:"lyric"`
	TLyric string `json:"tlyric,omitempty"`
	Source Source `json:"source"`
}

type SearchOption struct {
	Keyword string
	Type    int64
	Page    int64
	Limit   int64
}

// 解析失败时的错误原因串，贯穿适配器与回退链路
const (
	CauseRestricted  = "copyright restricted"
	CauseTimeout     = "timeout"
	CauseEmpty       = "empty result"
	CauseUnavailable = "upstream unavailable"
)

// NormalizeArtists 把上游的歌手字段统一成非空字符串列表。
// 上游可能返回单个字符串、字符串数组或带 name 的对象数组。
func NormalizeArtists(r gjson.Result) []string {
	var artists []string
	switch {
	case r.IsArray():
		r.ForEach(func(_, item gjson.Result) bool {
			name := item.String()
			if item.IsObject() {
				name = item.Get("name").String()
			}
			if name != "" {
				artists = append(artists, name)
			}
			return true
		})
	case r.Type == gjson.String:
		for _, name := range strings.Split(r.String(), "/") {
			if name = strings.TrimSpace(name); name != "" {
				artists = append(artists, name)
			}
		}
	case r.IsObject():
		if name := r.Get("name").String(); name != "" {
			artists = append(artists, name)
		}
	}
	if len(artists) == 0 {
		artists = []string{UnknownArtist}
	}
	return artists
}

// SplitArtists 解析请求参数里 "/" 连接的歌手串，空串回落占位值
func SplitArtists(s string) []string {
	return NormalizeArtists(gjson.Result{Type: gjson.String, Str: s})
}

func normalizeAlbum(s string) string {
	if s == "" {
		return UnknownAlbum
	}
	return s
}

// GenerateWebURL generates the web URL for a music track based on source and ID
func GenerateWebURL(source Source, id string) string {
	switch source {
	case SourceNetease:
		return fmt.Sprintf("https://music.163.com/#/song?id=%s", id)
	case SourceQQ:
		return fmt.Sprintf("https://y.qq.com/n/ryqq/songDetail/%s", id)
	case SourceKuwo:
		return fmt.Sprintf("https://kuwo.cn/play_detail/%s", id)
	case SourceBilibili:
		return fmt.Sprintf("https://www.bilibili.com/video/%s", id)
	default:
		return ""
	}
}
