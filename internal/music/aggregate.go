package music

import (
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/qingting-music/qingting/internal/base"
)

// aggregateAdapter 走聚合镜像（gdstudio 风格的 api.php），
// 一个接口覆盖多家子平台，auto 搜索的首选策略
type aggregateAdapter struct{}

func (*aggregateAdapter) Name() Source          { return SourceAggregate }
func (*aggregateAdapter) NeedsAudioProxy() bool { return false }

// 聚合镜像按子平台逐个查询后合并，顺序即优先级
var aggregateProviders = []string{"netease", "kuwo", "joox"}

func aggregateCall(v url.Values) (gjson.Result, error) {
	return rawGet(base.Config.AggregateAPI, v)
}

func (a *aggregateAdapter) Search(o SearchOption) SearchResult {
	if o.Type != TypeSong {
		return SearchResult{FromSource: a.Name()}
	}

	var songs []*Song
	for _, provider := range aggregateProviders {
		r, err := aggregateCall(url.Values{
			"types":  []string{"search"},
			"source": []string{provider},
			"name":   []string{o.Keyword},
			"count":  []string{fmt.Sprint(o.Limit)},
			"pages":  []string{fmt.Sprint(o.Page)},
		})
		if err != nil || !r.IsArray() {
			continue
		}
		r.ForEach(func(_, item gjson.Result) bool {
			songs = append(songs, aggregateSongOf(item, provider))
			return true
		})
	}
	return SearchResult{
		Songs:      songs,
		Total:      int64(len(songs)),
		FromSource: a.Name(),
	}
}

func aggregateSongOf(item gjson.Result, provider string) *Song {
	if s := item.Get("source").String(); s != "" {
		provider = s
	}
	return &Song{
		ID:       item.Get("id").String(),
		Name:     item.Get("name").String(),
		Artist:   NormalizeArtists(item.Get("artist")),
		Album:    normalizeAlbum(item.Get("album").String()),
		Source:   SourceAggregate,
		Provider: provider,
		PicID:    item.Get("pic_id").String(),
		LyricID:  item.Get("lyric_id").String(),
	}
}

func (a *aggregateAdapter) PlayURL(song *Song, quality string) PlayURLResult {
	r, err := aggregateCall(url.Values{
		"types":  []string{"url"},
		"source": []string{song.Provider},
		"id":     []string{song.ID},
		"br":     []string{quality},
	})
	if err != nil {
		return PlayURLResult{Source: a.Name(), Err: causeOf(err)}
	}
	u := r.Get("url").String()
	if u == "" {
		return PlayURLResult{Source: a.Name(), Err: CauseEmpty}
	}
	return PlayURLResult{
		URL:          u,
		Quality:      quality,
		BitrateLabel: fmt.Sprintf("%dK", r.Get("br").Int()),
		Source:       a.Name(),
	}
}

func (a *aggregateAdapter) Lyric(song *Song) LyricResult {
	id := song.LyricID
	if id == "" {
		id = song.ID
	}
	r, _ := aggregateCall(url.Values{
		"types":  []string{"lyric"},
		"source": []string{song.Provider},
		"id":     []string{id},
	})
	return LyricResult{
		Lyric:  r.Get("lyric").String(),
		TLyric: r.Get("tlyric").String(),
		Source: a.Name(),
	}
}

// CoverURL 通过聚合镜像换取专辑图直链
func CoverURL(song *Song) string {
	if song.Cover != "" {
		return song.Cover
	}
	if song.PicID == "" {
		return ""
	}
	r, _ := aggregateCall(url.Values{
		"types":  []string{"pic"},
		"source": []string{song.Provider},
		"id":     []string{song.PicID},
		"size":   []string{"300"},
	})
	return r.Get("url").String()
}
