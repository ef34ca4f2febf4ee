package proxy

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qingting-music/qingting/internal/base"
)

var logger = log.With().Str("component", "proxy").Logger()

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36 Edg/135.0.0.0"

// Handler 承接 /proxy/* 回源请求：校验白名单、注入 Referer、
// 透传 Range 和响应字节流
type Handler struct {
	router *Router
	client *http.Client
}

func NewHandler(router *Router) *Handler {
	return &Handler{
		router: router,
		// 音频流走这里，超时放宽到整首下载的量级
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (h *Handler) Register(g *gin.Engine) {
	g.GET("/proxy/api", h.API)
	g.GET("/proxy/audio", h.Audio)
	g.HEAD("/proxy/audio", h.Audio)
	g.GET("/proxy/bilibili", h.Bilibili)
	g.HEAD("/proxy/bilibili", h.Bilibili)
}

// API 通用接口转发，JSON 或二进制透传
func (h *Handler) API(c *gin.Context) {
	h.forward(c, "", false)
}

// Audio 音频流转发，透传 Range 支持拖进度条
func (h *Handler) Audio(c *gin.Context) {
	h.forward(c, "", true)
}

// Bilibili 平台专用转发：CDN 校验固定的 Referer/Origin
func (h *Handler) Bilibili(c *gin.Context) {
	h.forward(c, "bilibili", true)
}

func (h *Handler) forward(c *gin.Context, platform string, audio bool) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url parameter"})
		return
	}

	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url parameter"})
		return
	}
	if !HostAllowed(u.Hostname(), h.router.AllowHosts) {
		// 安全边界，不重试也不降级
		c.JSON(http.StatusForbidden, gin.H{"error": "host not allowed"})
		return
	}

	reqID := uuid.NewString()
	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url parameter"})
		return
	}

	req.Header.Set("User-Agent", browserUA)
	switch platform {
	case "bilibili":
		req.Header.Set("Referer", "https://www.bilibili.com/")
		req.Header.Set("Origin", "https://www.bilibili.com")
		if base.Config.BiliSessData != "" {
			req.AddCookie(&http.Cookie{Name: "SESSDATA", Value: base.Config.BiliSessData})
		}
	default:
		// 上游会拒绝 Referer 不同源的请求，用目标自己的源
		req.Header.Set("Referer", u.Scheme+"://"+u.Host+"/")
	}
	if audio {
		if rg := c.GetHeader("Range"); rg != "" {
			req.Header.Set("Range", rg)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("req_id", reqID).Str("host", u.Hostname()).Msg("upstream fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upstream fetch failed", "message": err.Error()})
		return
	}
	defer resp.Body.Close()

	for _, k := range []string{"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges", "Cache-Control"} {
		if v := resp.Header.Get(k); v != "" {
			c.Header(k, v)
		}
	}
	if audio && resp.Header.Get("Accept-Ranges") == "" {
		c.Header("Accept-Ranges", "bytes")
	}
	c.Header("Access-Control-Allow-Origin", "*")

	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// 播放器拖动进度或切歌会掐断连接，常态
		logger.Debug().Err(err).Str("req_id", reqID).Msg("stream interrupted")
	}
}
