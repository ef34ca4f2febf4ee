package music

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/qingting-music/qingting/internal/base"
)

// cloudsearch 的类型取值
const (
	neteaseSong     = 1
	neteasePlaylist = 1000
)

type neteaseAdapter struct{}

func (*neteaseAdapter) Name() Source          { return SourceNetease }
func (*neteaseAdapter) NeedsAudioProxy() bool { return false }

func neteaseHosts() hostPair {
	return hostPair{base.Config.NeteaseAPI, base.Config.NeteaseAPIFallback}
}

func neteasePost(path string, k H, key string) (gjson.Result, error) {
	k["cookie"] = base.Config.Cookie
	return apiPost(neteaseHosts(), path, k, key)
}

// 请求的码率标签 → 网易接口的音质档位
func neteaseLevel(quality string) string {
	switch quality {
	case "999":
		return "hires"
	case "740":
		return "lossless"
	case "320":
		return "exhigh"
	case "192":
		return "higher"
	default:
		return "standard"
	}
}

func (a *neteaseAdapter) Search(o SearchOption) SearchResult {
	if o.Type != TypeSong {
		// 歌手/歌单走独立的结果模型，这里只产出曲目
		return SearchResult{FromSource: a.Name()}
	}

	r, _ := neteasePost("/cloudsearch", H{
		"keywords": o.Keyword,
		"type":     neteaseSong,
		"limit":    o.Limit,
		"offset":   (o.Page - 1) * o.Limit,
	}, "keywords")

	var songs []*Song
	r.Get("result.songs").ForEach(func(_, item gjson.Result) bool {
		if !neteasePlayable(item) {
			return true
		}
		songs = append(songs, neteaseSongOf(item))
		return true
	})
	return SearchResult{
		Songs:      songs,
		Total:      r.Get("result.songCount").Int(),
		FromSource: a.Name(),
	}
}

// neteasePlayable 过滤 VIP 专享和无播放权限的曲目，
// 展示不可播的结果比直接省略体验更差
func neteasePlayable(item gjson.Result) bool {
	if item.Get("fee").Int() == 1 {
		return false
	}
	if p := item.Get("privilege"); p.Exists() && p.Get("st").Int() < 0 {
		return false
	}
	return true
}

func neteaseSongOf(item gjson.Result) *Song {
	id := item.Get("id").String()
	return &Song{
		ID:       id,
		Name:     item.Get("name").String(),
		Artist:   NormalizeArtists(item.Get("ar")),
		Album:    normalizeAlbum(item.Get("al.name").String()),
		Source:   SourceNetease,
		PicID:    item.Get("al.pic_str").String(),
		Cover:    item.Get("al.picUrl").String(),
		LyricID:  id,
		Duration: item.Get("dt").Int() / 1000,
		WebURL:   GenerateWebURL(SourceNetease, id),
	}
}

func (a *neteaseAdapter) PlayURL(song *Song, quality string) PlayURLResult {
	level := neteaseLevel(quality)

	// 先试听链接，取不到再落到下载链接
	try, err := neteasePost("/song/url/v1", H{
		"id":    song.ID,
		"level": level,
	}, "id")
	if err != nil {
		return PlayURLResult{Source: a.Name(), Err: causeOf(err)}
	}
	data := try.Get("data.0")
	u := data.Get("url").String()
	if u == "" {
		download, derr := neteasePost("/song/download/url/v1", H{
			"id":    song.ID,
			"level": level,
		}, "id")
		if derr != nil {
			return PlayURLResult{Source: a.Name(), Err: causeOf(derr)}
		}
		u = download.Get("data.url").String()
		if u != "" {
			data = download.Get("data")
		}
	}
	if u == "" {
		cause := CauseEmpty
		if data.Get("fee").Int() == 1 || data.Get("code").Int() == -110 {
			cause = CauseRestricted
		}
		return PlayURLResult{Source: a.Name(), Err: cause}
	}
	return PlayURLResult{
		URL:          u,
		Quality:      quality,
		BitrateLabel: bitrateLabel(data.Get("br").Int()),
		Source:       a.Name(),
	}
}

func (a *neteaseAdapter) Lyric(song *Song) LyricResult {
	id := song.LyricID
	if id == "" {
		id = song.ID
	}
	r, _ := neteasePost("/lyric", H{"id": id}, "id")
	return LyricResult{
		Lyric:  r.Get("lrc.lyric").String(),
		TLyric: r.Get("tlyric.lyric").String(),
		Source: a.Name(),
	}
}

// bitrateLabel 把上游回报的 bps 码率折算成展示标签
func bitrateLabel(br int64) string {
	kbps := br / 1000
	switch {
	case kbps <= 0:
		return ""
	case kbps >= 1500:
		return "Hi-Res"
	case kbps >= 700:
		return "SQ"
	default:
		return fmt.Sprintf("%dK", kbps)
	}
}
