package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/qingting-music/qingting/internal/base"
	"github.com/qingting-music/qingting/internal/lyric"
	"github.com/qingting-music/qingting/internal/music"
	"github.com/qingting-music/qingting/internal/proxy"
)

type server struct {
	orch     *music.Orchestrator
	resolver *music.Resolver
	router   *proxy.Router

	// 按播放会话统计连续解析失败，决定换源或停播
	sessions *expirable.LRU[string, *music.FailureTracker]
}

func intQuery(c *gin.Context, key string, def int64) int64 {
	if v := c.Query(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func (s *server) searchMusic(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing keyword"})
		return
	}

	q := music.Query{
		Keyword: keyword,
		Source:  music.ParseSource(c.Query("source")),
		Type:    intQuery(c, "type", music.TypeSong),
		Limit:   intQuery(c, "limit", 0),
		Page:    intQuery(c, "page", intQuery(c, "curpage", 1)),
	}

	if q.Type == music.TypePlaylist {
		r := music.SearchPlaylist(q.Source, music.SearchOption{
			Keyword: q.Keyword,
			Page:    q.Page,
			Limit:   max64(q.Limit, 20),
		})
		c.JSON(http.StatusOK, r)
		return
	}

	c.JSON(http.StatusOK, s.orch.Search(q))
}

func (s *server) playURL(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	song := &music.Song{
		ID:       id,
		Name:     c.Query("name"),
		Artist:   music.SplitArtists(c.Query("artist")),
		Source:   music.ParseSource(c.Query("source")),
		Provider: c.Query("provider"),
		LyricID:  c.Query("lyric_id"),
	}
	if song.Source == music.SourceAuto {
		song.Source = music.SourceNetease
	}

	quality := c.Query("quality")
	if quality == "" && len(base.Config.QualityOrder) > 0 {
		quality = base.Config.QualityOrder[0]
	}

	r := s.resolver.Resolve(song, quality)
	if !r.OK() {
		resp := gin.H{"error": failureMessage(r.LastError), "cause": r.LastError}
		if session := c.Query("session"); session != "" {
			resp["action"] = s.trackFailure(session)
		}
		c.JSON(http.StatusBadGateway, resp)
		return
	}

	if session := c.Query("session"); session != "" {
		if t, ok := s.sessions.Get(session); ok {
			t.Success()
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"url":           r.URL,
		"quality":       r.Quality,
		"bitrate_label": r.BitrateLabel,
		"used_fallback": r.UsedFallback,
		"from_source":   r.UsedSource,
	})
}

// trackFailure 更新会话的连败计数并返回给前端的处置建议
func (s *server) trackFailure(session string) string {
	t, ok := s.sessions.Get(session)
	if !ok {
		t = music.NewFailureTracker()
		s.sessions.Add(session, t)
	}
	switch t.Failure() {
	case music.ActionHalt:
		return "halt"
	case music.ActionSwitchSource:
		return "switch_source"
	default:
		return "continue"
	}
}

// failureMessage 把解析链路的原因串换成给用户看的提示
func failureMessage(cause string) string {
	switch cause {
	case music.CauseRestricted:
		return "歌曲受版权限制，暂时无法播放"
	case music.CauseTimeout:
		return "上游接口超时，请稍后重试"
	case music.CauseUnavailable:
		return "音源暂时不可用，请切换其他音源"
	default:
		return "未找到可播放的音源"
	}
}

func (s *server) getLyric(c *gin.Context) {
	sourceName := music.ParseSource(c.Query("source"))
	if sourceName == music.SourceAuto {
		sourceName = music.SourceNetease
	}
	adapter := music.Lookup(sourceName)
	if adapter == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source"})
		return
	}

	song := &music.Song{
		ID:       c.Query("id"),
		LyricID:  c.Query("lyric_id"),
		Provider: c.Query("provider"),
		Source:   sourceName,
	}
	r := adapter.Lyric(song)

	// 后台解析兜底到同步解析，单条坏数据不拖死请求
	lines, err := lyric.ParseAsync(c.Request.Context(), r.Lyric, lyric.DefaultParseTimeout)
	if err != nil {
		lines = lyric.Parse(r.Lyric)
	}
	if r.TLyric != "" {
		lines = lyric.MergeTranslation(lines, lyric.Parse(r.TLyric), lyric.TranslationTolerance)
	}

	c.JSON(http.StatusOK, gin.H{
		"lyric":       r.Lyric,
		"tlyric":      r.TLyric,
		"lines":       lines,
		"from_source": r.Source,
	})
}

func (s *server) suggest(c *gin.Context) {
	limit := int(intQuery(c, "limit", 10))
	c.JSON(http.StatusOK, gin.H{
		"suggestions": s.orch.Suggest(c.Query("prefix"), limit),
	})
}

func (s *server) getHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": s.orch.History().All()})
}

func (s *server) clearHistory(c *gin.Context) {
	s.orch.History().Clear()
	c.JSON(http.StatusOK, gin.H{"message": "搜索历史已清空"})
}

func (s *server) coverURL(c *gin.Context) {
	song := &music.Song{
		Cover:    c.Query("cover"),
		PicID:    c.Query("pic_id"),
		Provider: c.Query("provider"),
	}
	u := music.CoverURL(song)
	if u == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cover available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}

func (s *server) listSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": music.Sources()})
}

func (s *server) playlistSongs(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}
	r := music.GetPlaylistSongs(music.ParseSource(c.Query("source")), id)
	c.JSON(http.StatusOK, r)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
