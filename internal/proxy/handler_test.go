package proxy

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestEngine(hosts []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	NewHandler(NewRouter(true, false, hosts)).Register(g)
	return g
}

func doProxy(g *gin.Engine, path, target, rangeHeader string) *httptest.ResponseRecorder {
	u := path
	if target != "" {
		u += "?url=" + url.QueryEscape(target)
	}
	req := httptest.NewRequest("GET", u, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestProxyMissingURL(t *testing.T) {
	g := newTestEngine(testHosts)
	for _, path := range []string{"/proxy/api", "/proxy/audio", "/proxy/bilibili"} {
		w := doProxy(g, path, "", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: code = %d, want 400", path, w.Code)
		}
	}
}

func TestProxyInvalidURL(t *testing.T) {
	g := newTestEngine(testHosts)
	w := doProxy(g, "/proxy/api", "::::not-a-url", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", w.Code)
	}
}

func TestProxyHostNotAllowed(t *testing.T) {
	g := newTestEngine(testHosts)
	w := doProxy(g, "/proxy/audio", "https://evil.example/a.mp3", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("code = %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), "host not allowed") {
		t.Errorf("body = %q, want host not allowed", w.Body.String())
	}
}

func TestProxyAudioRangeForwarding(t *testing.T) {
	var gotRange, gotReferer string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Range", "bytes 0-1/2")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	g := newTestEngine([]string{"127.0.0.1"})
	w := doProxy(g, "/proxy/audio", upstream.URL+"/track.mp3", "bytes=0-1")

	if w.Code != http.StatusPartialContent {
		t.Fatalf("code = %d, want 206", w.Code)
	}
	if gotRange != "bytes=0-1" {
		t.Errorf("upstream Range = %q, want bytes=0-1", gotRange)
	}
	// Referer 取目标自己的源
	if gotReferer != upstream.URL+"/" {
		t.Errorf("upstream Referer = %q, want %q", gotReferer, upstream.URL+"/")
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 0-1/2" {
		t.Errorf("Content-Range = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", w.Body.String())
	}
}

func TestProxyDefaultAcceptRanges(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("x"))
	}))
	defer upstream.Close()

	g := newTestEngine([]string{"127.0.0.1"})
	w := doProxy(g, "/proxy/audio", upstream.URL+"/track.mp3", "")
	if got := w.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q, want bytes", got)
	}
}

func TestProxyUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := upstream.URL + "/track.mp3"
	upstream.Close()

	g := newTestEngine([]string{"127.0.0.1"})
	w := doProxy(g, "/proxy/audio", target, "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "upstream fetch failed") {
		t.Errorf("body = %q, want upstream fetch failed", w.Body.String())
	}
}
