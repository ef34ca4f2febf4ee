package music

import (
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/qingting-music/qingting/internal/base"
)

type kugouAdapter struct{}

func (*kugouAdapter) Name() Source          { return SourceKugou }
func (*kugouAdapter) NeedsAudioProxy() bool { return false }

func kugouHosts() hostPair {
	return hostPair{base.Config.KugouAPI, base.Config.KugouAPIFallback}
}

func kugouGet(path string, k url.Values) (gjson.Result, error) {
	return apiGet(kugouHosts(), path, k)
}

func kugouQuality(quality string) string {
	switch quality {
	case "999", "740":
		return "flac"
	case "320":
		return "320"
	default:
		return "128"
	}
}

func (a *kugouAdapter) Search(o SearchOption) SearchResult {
	if o.Type != TypeSong {
		return SearchResult{FromSource: a.Name()}
	}

	r, _ := kugouGet("/search", url.Values{
		"keywords": []string{o.Keyword},
		"page":     []string{fmt.Sprint(o.Page)},
		"pagesize": []string{fmt.Sprint(o.Limit)},
	})

	var songs []*Song
	r.Get("data.lists").ForEach(func(_, item gjson.Result) bool {
		// PayType 非零的是付费曲目
		if item.Get("PayType").Int() != 0 {
			return true
		}
		hash := item.Get("FileHash").String()
		songs = append(songs, &Song{
			ID:       hash,
			Name:     item.Get("SongName").String(),
			Artist:   NormalizeArtists(item.Get("SingerName")),
			Album:    normalizeAlbum(item.Get("AlbumName").String()),
			Source:   SourceKugou,
			PicID:    item.Get("Image").String(),
			LyricID:  hash,
			Duration: item.Get("Duration").Int(),
		})
		return true
	})
	return SearchResult{
		Songs:      songs,
		Total:      r.Get("data.total").Int(),
		FromSource: a.Name(),
	}
}

func (a *kugouAdapter) PlayURL(song *Song, quality string) PlayURLResult {
	r, err := kugouGet("/song/url", url.Values{
		"hash":    []string{song.ID},
		"quality": []string{kugouQuality(quality)},
	})
	if err != nil {
		return PlayURLResult{Source: a.Name(), Err: causeOf(err)}
	}
	u := r.Get("url.0").String()
	if u == "" {
		u = r.Get("backupUrl.0").String()
	}
	if u == "" {
		cause := CauseEmpty
		// status 2 表示需要购买或区域受限
		if r.Get("status").Int() == 2 {
			cause = CauseRestricted
		}
		return PlayURLResult{Source: a.Name(), Err: cause}
	}
	return PlayURLResult{
		URL:          u,
		Quality:      quality,
		BitrateLabel: bitrateLabel(r.Get("bitRate").Int()),
		Source:       a.Name(),
	}
}

func (a *kugouAdapter) Lyric(song *Song) LyricResult {
	// 歌词要先检索候选拿到 id 和 accesskey 再取正文
	cand, _ := kugouGet("/search/lyric", url.Values{
		"hash": []string{song.LyricID},
	})
	c := cand.Get("candidates.0")
	if !c.Exists() {
		return LyricResult{Source: a.Name()}
	}
	r, _ := kugouGet("/lyric", url.Values{
		"id":        []string{c.Get("id").String()},
		"accesskey": []string{c.Get("accesskey").String()},
		"decode":    []string{"true"},
		"fmt":       []string{"lrc"},
	})
	return LyricResult{
		Lyric:  r.Get("decodeContent").String(),
		Source: a.Name(),
	}
}
