package music

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/qingting-music/qingting/internal/base"
	"github.com/qingting-music/qingting/internal/music/kuwo"
)

var kuwoClient = kuwo.NewClient()

type qqAdapter struct{}

func (*qqAdapter) Name() Source          { return SourceQQ }
func (*qqAdapter) NeedsAudioProxy() bool { return false }

func qqHosts() hostPair {
	return hostPair{base.Config.QQAPI, base.Config.QQAPIFallback}
}

func qqGet(path string, k url.Values) (gjson.Result, error) {
	return apiGet(qqHosts(), path, k)
}

func qqType(quality string) string {
	switch quality {
	case "999", "740":
		return "flac"
	case "320":
		return "320"
	default:
		return "128"
	}
}

func (a *qqAdapter) Search(o SearchOption) SearchResult {
	if o.Type != TypeSong {
		return SearchResult{FromSource: a.Name()}
	}

	r, _ := qqGet("/search", url.Values{
		"key":      []string{o.Keyword},
		"pageNo":   []string{fmt.Sprint(o.Page)},
		"pageSize": []string{fmt.Sprint(o.Limit)},
	})

	var songs []*Song
	r.Get("data.list").ForEach(func(_, item gjson.Result) bool {
		if !qqPlayable(item) {
			return true
		}
		songs = append(songs, qqSongOf(item))
		return true
	})
	return SearchResult{
		Songs:      songs,
		Total:      r.Get("data.total").Int(),
		FromSource: a.Name(),
	}
}

func qqPlayable(item gjson.Result) bool {
	// pay_play 为 1 的是付费专享曲目
	return item.Get("pay.pay_play").Int() != 1
}

func qqSongOf(item gjson.Result) *Song {
	mid := item.Get("songmid").String()
	albumMid := item.Get("albummid").String()
	return &Song{
		ID:       mid,
		Name:     item.Get("songname").String(),
		Artist:   NormalizeArtists(item.Get("singer")),
		Album:    normalizeAlbum(item.Get("albumname").String()),
		Source:   SourceQQ,
		PicID:    albumMid,
		Cover:    qqCoverURL(albumMid),
		LyricID:  mid,
		Duration: item.Get("interval").Int(),
		WebURL:   GenerateWebURL(SourceQQ, mid),
	}
}

func qqCoverURL(albumMid string) string {
	if albumMid == "" {
		return ""
	}
	return fmt.Sprintf("https://y.gtimg.cn/music/photo_new/T002R300x300M000%s.jpg", albumMid)
}

func (a *qqAdapter) PlayURL(song *Song, quality string) PlayURLResult {
	r, err := qqGet("/song/url", url.Values{
		"id":   []string{song.ID},
		"type": []string{qqType(quality)},
	})
	if err == nil {
		if u := r.Get("data").String(); u != "" {
			return PlayURLResult{
				URL:     u,
				Quality: quality,
				Source:  a.Name(),
			}
		}
	}

	// 镜像拿不到播放地址时借道酷我检索同名曲目取流
	u, label := kuwoStreamFor(song.Name + " " + song.ArtistLine())
	if u == "" {
		if err != nil {
			return PlayURLResult{Source: a.Name(), Err: causeOf(err)}
		}
		return PlayURLResult{Source: a.Name(), Err: CauseEmpty}
	}
	return PlayURLResult{
		URL:          u,
		Quality:      quality,
		BitrateLabel: label,
		Source:       a.Name(),
	}
}

// kuwoStreamFor 用关键词在酷我检索并换取直链，qq 取链兜底用
func kuwoStreamFor(keyword string) (string, string) {
	resp, err := kuwoClient.SearchMusic(0, 10, keyword)
	if err != nil || len(resp.Abslist) == 0 {
		return "", ""
	}
	rid := strings.TrimPrefix(resp.Abslist[0].MUSICRID, "MUSIC_")
	u, br, err := kuwoClient.PlayURL(rid, "2000kflac")
	if err != nil {
		return "", ""
	}
	return u, br
}

func (a *qqAdapter) Lyric(song *Song) LyricResult {
	r, _ := qqGet("/lyric", url.Values{
		"songmid": []string{song.ID},
	})
	return LyricResult{
		Lyric:  r.Get("data.lyric").String(),
		TLyric: r.Get("data.trans").String(),
		Source: a.Name(),
	}
}
