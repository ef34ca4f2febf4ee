package music

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/imroc/req/v3"

	"github.com/qingting-music/qingting/internal/base"
)

const (
	biliSearchType = "https://api.bilibili.com/x/web-interface/search/type"
	biliView       = "https://api.bilibili.com/x/web-interface/view"
	biliPlayURL    = "https://api.bilibili.com/x/player/playurl"
)

type biliResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Ttl     int    `json:"ttl"`
}

type biliResponse[T any] struct {
	biliResp
	Data T `json:"data"`
}

type biliSearchData struct {
	NumResults int `json:"numResults"`
	Result     []struct {
		Bvid     string `json:"bvid"`
		Title    string `json:"title"`
		Author   string `json:"author"`
		Pic      string `json:"pic"`
		Duration string `json:"duration"` // "mm:ss"
	} `json:"result"`
}

type biliViewData struct {
	Aid      int    `json:"aid"`
	Cid      int    `json:"cid"`
	Pic      string `json:"pic"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	Owner    struct {
		Name string `json:"name"`
	} `json:"owner"`
}

type biliPlayData struct {
	Dash struct {
		Audio []struct {
			ID      int    `json:"id"`
			BaseURL string `json:"baseUrl"`
		} `json:"audio"`
	} `json:"dash"`
}

func biliGet[T any](reqURL string, params map[string]any) *biliResponse[T] {
	client := req.C().
		SetTimeout(5 * time.Second)

	var result biliResponse[T]
	var errMsg biliResp
	resp, err := client.R().
		SetQueryParamsAnyType(params).
		SetHeader("Referer", "https://www.bilibili.com/").
		SetHeader("Origin", "https://www.bilibili.com").
		SetCookies(biliCookies()...).
		SetSuccessResult(&result).
		SetErrorResult(&errMsg).
		Get(reqURL)
	if err != nil {
		logger.Warn().Err(err).Str("url", reqURL).Msg("bilibili request failed")
		return nil
	}
	if resp.IsErrorState() {
		logger.Warn().Str("message", errMsg.Message).Str("url", reqURL).Msg("bilibili error response")
		return nil
	}
	return &result
}

func biliCookies() []*http.Cookie {
	if base.Config.BiliSessData == "" {
		return nil
	}
	return []*http.Cookie{{
		Name:  "SESSDATA",
		Value: base.Config.BiliSessData,
	}}
}

type bilibiliAdapter struct{}

func (*bilibiliAdapter) Name() Source { return SourceBilibili }

// CDN 校验 Referer 且不接受浏览器跨域 Range 请求，取到的
// 直链必须经平台代理回源
func (*bilibiliAdapter) NeedsAudioProxy() bool { return true }

var emTag = regexp.MustCompile(`</?em[^>]*>`)

func (a *bilibiliAdapter) Search(o SearchOption) SearchResult {
	if o.Type != TypeSong {
		return SearchResult{FromSource: a.Name()}
	}

	resp := biliGet[biliSearchData](biliSearchType, map[string]any{
		"search_type": "video",
		"keyword":     o.Keyword,
		"page":        o.Page,
	})
	if resp == nil || resp.Code != 0 {
		return SearchResult{FromSource: a.Name()}
	}

	var songs []*Song
	for _, v := range resp.Data.Result {
		if int64(len(songs)) >= o.Limit {
			break
		}
		songs = append(songs, &Song{
			ID:       v.Bvid,
			Name:     emTag.ReplaceAllString(v.Title, ""),
			Artist:   []string{v.Author},
			Album:    UnknownAlbum,
			Source:   SourceBilibili,
			Cover:    upgradeScheme(v.Pic),
			Duration: parseColonDuration(v.Duration),
			WebURL:   GenerateWebURL(SourceBilibili, v.Bvid),
		})
	}
	return SearchResult{
		Songs:      songs,
		Total:      int64(resp.Data.NumResults),
		FromSource: a.Name(),
	}
}

func (a *bilibiliAdapter) PlayURL(song *Song, quality string) PlayURLResult {
	view := biliGet[biliViewData](biliView, map[string]any{"bvid": song.ID})
	if view == nil || view.Code != 0 {
		return PlayURLResult{Source: a.Name(), Err: CauseUnavailable}
	}

	play := biliGet[biliPlayData](biliPlayURL, map[string]any{
		"fnval": 4048,
		"avid":  view.Data.Aid,
		"cid":   view.Data.Cid,
	})
	if play == nil || play.Code != 0 {
		return PlayURLResult{Source: a.Name(), Err: CauseUnavailable}
	}

	streams := play.Data.Dash.Audio
	if len(streams) == 0 {
		return PlayURLResult{Source: a.Name(), Err: CauseEmpty}
	}

	// dash 音轨 id 越大码率越高，低档请求取最低轨
	best := streams[0]
	for _, s := range streams[1:] {
		higher := s.ID > best.ID
		if wantHighQuality(quality) == higher {
			best = s
		}
	}
	return PlayURLResult{
		URL:          best.BaseURL,
		Quality:      quality,
		BitrateLabel: "dash",
		Source:       a.Name(),
	}
}

func wantHighQuality(quality string) bool {
	return quality == "999" || quality == "740" || quality == "320"
}

func (a *bilibiliAdapter) Lyric(song *Song) LyricResult {
	// 视频类来源没有歌词
	return LyricResult{Source: a.Name()}
}

// "mm:ss" 或 "hh:mm:ss" → 秒
func parseColonDuration(s string) int64 {
	var total int64
	for _, part := range strings.Split(s, ":") {
		var n int64
		for _, c := range part {
			if c < '0' || c > '9' {
				return 0
			}
			n = n*10 + int64(c-'0')
		}
		total = total*60 + n
	}
	return total
}

func upgradeScheme(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
