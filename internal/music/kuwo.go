package music

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

type kuwoAdapter struct{}

func (*kuwoAdapter) Name() Source          { return SourceKuwo }
func (*kuwoAdapter) NeedsAudioProxy() bool { return false }

func kuwoBr(quality string) string {
	switch quality {
	case "999", "740":
		return "2000kflac"
	case "320":
		return "320kmp3"
	case "192":
		return "192kmp3"
	default:
		return "128kmp3"
	}
}

func (a *kuwoAdapter) Search(o SearchOption) SearchResult {
	if o.Type != TypeSong {
		return SearchResult{FromSource: a.Name()}
	}

	resp, err := kuwoClient.SearchMusic(int(o.Page-1), int(o.Limit), o.Keyword)
	if err != nil {
		logger.Warn().Err(err).Str("keyword", o.Keyword).Msg("kuwo search failed")
		return SearchResult{FromSource: a.Name()}
	}

	var songs []*Song
	for i := range resp.Abslist {
		item := &resp.Abslist[i]
		rid := item.RID()
		duration, _ := strconv.ParseInt(item.DURATION, 10, 64)
		songs = append(songs, &Song{
			ID:       rid,
			Name:     htmlUnescape(item.NAME),
			Artist:   NormalizeArtists(gjson.Result{Type: gjson.String, Str: item.ARTIST}),
			Album:    normalizeAlbum(htmlUnescape(item.ALBUM)),
			Source:   SourceKuwo,
			PicID:    item.WebAlbumP,
			LyricID:  rid,
			Duration: duration,
			WebURL:   GenerateWebURL(SourceKuwo, rid),
		})
	}
	total, _ := strconv.ParseInt(resp.Total, 10, 64)
	return SearchResult{Songs: songs, Total: total, FromSource: a.Name()}
}

func (a *kuwoAdapter) PlayURL(song *Song, quality string) PlayURLResult {
	u, br, err := kuwoClient.PlayURL(song.ID, kuwoBr(quality))
	if err != nil {
		return PlayURLResult{Source: a.Name(), Err: causeOf(err)}
	}
	return PlayURLResult{
		URL:          u,
		Quality:      quality,
		BitrateLabel: br,
		Source:       a.Name(),
	}
}

func (a *kuwoAdapter) Lyric(song *Song) LyricResult {
	lrc, err := kuwoClient.Lyric(song.ID)
	if err != nil {
		logger.Warn().Err(err).Str("id", song.ID).Msg("kuwo lyric failed")
		return LyricResult{Source: a.Name()}
	}
	return LyricResult{Lyric: lrc, Source: a.Name()}
}

// 酷我搜索结果里的标题偶带转义实体
func htmlUnescape(s string) string {
	r := strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&nbsp;", " ")
	return r.Replace(s)
}
