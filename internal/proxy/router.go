// Package proxy 负责判定并改写需要绕过跨域限制的目标地址，
// 以及承接改写后落到本服务的 /proxy/* 回源端点。
package proxy

import (
	"net/url"
	"path"
	"strings"
)

// Router 只做 URL 字符串变换，不发任何网络请求。
// 服务启动时按配置创建一次。
type Router struct {
	Enabled      bool
	UpgradeHTTPS bool
	AllowHosts   []string

	// 各代理端点的同源路径前缀
	APIPath      string
	AudioPath    string
	PlatformPath map[string]string
}

func NewRouter(enabled, upgrade bool, allowHosts []string) *Router {
	return &Router{
		Enabled:      enabled,
		UpgradeHTTPS: upgrade,
		AllowHosts:   allowHosts,
		APIPath:      "/proxy/api",
		AudioPath:    "/proxy/audio",
		PlatformPath: map[string]string{
			"bilibili": "/proxy/bilibili",
		},
	}
}

var audioExts = map[string]struct{}{
	".mp3": {}, ".flac": {}, ".m4a": {}, ".aac": {}, ".ogg": {}, ".wav": {}, ".ape": {}, ".m4s": {},
}

// 已知的音频 CDN 主机特征
var audioHostHints = []string{
	"music.126.net",
	"bilivideo.",
	"mobi.kuwo.cn",
	"sycdn.kuwo.cn",
	"stream.qqmusic.qq.com",
	"trackercdn.kugou.com",
}

// NeedsProxy 判断目标是否要走代理：代理开启且主机在白名单内。
// 白名单外的主机视为可直连。解析失败按直连处理，不能因为
// 一条坏 URL 卡住页面渲染。
func (r *Router) NeedsProxy(raw string) bool {
	if !r.Enabled || raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return false
	}
	return HostAllowed(u.Hostname(), r.AllowHosts)
}

// IsAudioURL 依据扩展名、CDN 主机特征和外链下载路径判断音频地址
func (r *Router) IsAudioURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if _, ok := audioExts[strings.ToLower(path.Ext(u.Path))]; ok {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, hint := range audioHostHints {
		if strings.Contains(host, hint) {
			return true
		}
	}
	// 酷我外链下载接口没有扩展名
	if strings.Contains(host, "kuwo.cn") && strings.Contains(u.Path, "/mobi.s") {
		return true
	}
	return false
}

// Resolve 把目标地址改写为同源代理路径。不需要代理时原样
// 返回，最多做一次 http→https 升级。sourceHint 命中平台
// 专用代理时优先于通用音频/接口代理。
func (r *Router) Resolve(raw string, sourceHint string) string {
	if raw == "" {
		return raw
	}
	if !r.NeedsProxy(raw) {
		if r.UpgradeHTTPS && strings.HasPrefix(raw, "http://") {
			return "https://" + strings.TrimPrefix(raw, "http://")
		}
		return raw
	}

	target := r.APIPath
	if p, ok := r.PlatformPath[strings.ToLower(sourceHint)]; ok {
		target = p
	} else if r.IsAudioURL(raw) {
		target = r.AudioPath
	}
	return target + "?url=" + url.QueryEscape(raw)
}

// HostAllowed 对白名单做后缀域匹配，"kuwo.cn" 同时放行其子域
func HostAllowed(host string, allow []string) bool {
	host = strings.ToLower(host)
	for _, a := range allow {
		a = strings.ToLower(a)
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}
