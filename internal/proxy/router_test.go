package proxy

import (
	"strings"
	"testing"
)

var testHosts = []string{"music.126.net", "kuwo.cn", "bilivideo.com", "163api.qijieya.cn"}

func newTestRouter() *Router {
	return NewRouter(true, false, testHosts)
}

func TestNeedsProxy(t *testing.T) {
	r := newTestRouter()
	testCases := []struct {
		url  string
		want bool
	}{
		{"https://m801.music.126.net/abc.mp3", true},
		{"https://kuwo.cn/api/whatever", true},
		{"https://antiserver.kuwo.cn/anti.s", true},
		{"https://example.com/song.mp3", false},
		{"", false},
		{"::::not-a-url", false},
	}
	for _, tc := range testCases {
		if got := r.NeedsProxy(tc.url); got != tc.want {
			t.Errorf("NeedsProxy(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestNeedsProxyDisabled(t *testing.T) {
	r := NewRouter(false, false, testHosts)
	if r.NeedsProxy("https://m801.music.126.net/abc.mp3") {
		t.Error("disabled router should never require proxying")
	}
}

func TestIsAudioURL(t *testing.T) {
	r := newTestRouter()
	testCases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/track.mp3", true},
		{"https://example.com/track.flac", true},
		{"https://upos-sz.bilivideo.com/segment.m4s", true},
		{"https://m801.music.126.net/whatever", true},
		{"https://mobi.kuwo.cn/mobi.s?rid=123", true},
		{"https://example.com/index.html", false},
		{"https://163api.qijieya.cn/cloudsearch", false},
	}
	for _, tc := range testCases {
		if got := r.IsAudioURL(tc.url); got != tc.want {
			t.Errorf("IsAudioURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestResolveAudio(t *testing.T) {
	r := newTestRouter()
	got := r.Resolve("https://m801.music.126.net/abc.mp3", "")
	if !strings.HasPrefix(got, "/proxy/audio?url=") {
		t.Errorf("Resolve = %q, want audio proxy path", got)
	}
}

func TestResolveAPI(t *testing.T) {
	r := newTestRouter()
	got := r.Resolve("https://163api.qijieya.cn/cloudsearch", "")
	if !strings.HasPrefix(got, "/proxy/api?url=") {
		t.Errorf("Resolve = %q, want api proxy path", got)
	}
}

func TestResolvePlatformHint(t *testing.T) {
	r := newTestRouter()
	// 平台提示优先于音频分类
	got := r.Resolve("https://upos-sz.bilivideo.com/segment.m4s", "bilibili")
	if !strings.HasPrefix(got, "/proxy/bilibili?url=") {
		t.Errorf("Resolve = %q, want platform proxy path", got)
	}
}

func TestResolvePassthrough(t *testing.T) {
	r := newTestRouter()
	for _, u := range []string{"https://example.com/song.mp3", "", "::::not-a-url"} {
		if got := r.Resolve(u, ""); got != u {
			t.Errorf("Resolve(%q) = %q, want unchanged", u, got)
		}
	}
}

func TestResolveUpgradesHTTPS(t *testing.T) {
	r := NewRouter(true, true, testHosts)
	got := r.Resolve("http://example.com/song.mp3", "")
	if got != "https://example.com/song.mp3" {
		t.Errorf("Resolve = %q, want https upgrade", got)
	}
}

func TestHostAllowed(t *testing.T) {
	testCases := []struct {
		host string
		want bool
	}{
		{"kuwo.cn", true},
		{"antiserver.kuwo.cn", true},
		{"evilkuwo.cn", false},
		{"kuwo.cn.evil.com", false},
		{"MUSIC.126.NET", true},
	}
	for _, tc := range testCases {
		if got := HostAllowed(tc.host, testHosts); got != tc.want {
			t.Errorf("HostAllowed(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}
