package music

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/qingting-music/qingting/internal/base"
)

func TestCauseOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, CauseEmpty},
		{"deadline", os.ErrDeadlineExceeded, CauseTimeout},
		{"plain", errors.New("boom"), CauseUnavailable},
	}
	for _, tc := range testCases {
		if got := causeOf(tc.err); got != tc.want {
			t.Errorf("%s: causeOf = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// 上游超时必须以 timeout 原因浮出，不得折叠成空结果
func TestKugouPlayURLTimeoutCause(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer upstream.Close()

	oldClient := httpClient
	oldAPI := base.Config.KugouAPI
	httpClient = &http.Client{Timeout: 30 * time.Millisecond}
	base.Config.KugouAPI = upstream.URL
	defer func() {
		httpClient = oldClient
		base.Config.KugouAPI = oldAPI
	}()

	a := &kugouAdapter{}
	got := a.PlayURL(&Song{ID: "deadbeef", Source: SourceKugou}, "320")
	if got.OK() {
		t.Fatal("expected failure")
	}
	if got.Err != CauseTimeout {
		t.Errorf("Err = %q, want %q", got.Err, CauseTimeout)
	}
}

func TestNeteasePlayURLUnavailableCause(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	oldAPI := base.Config.NeteaseAPI
	oldFallback := base.Config.NeteaseAPIFallback
	base.Config.NeteaseAPI = upstream.URL
	base.Config.NeteaseAPIFallback = ""
	defer func() {
		base.Config.NeteaseAPI = oldAPI
		base.Config.NeteaseAPIFallback = oldFallback
	}()

	a := &neteaseAdapter{}
	got := a.PlayURL(&Song{ID: "1", Source: SourceNetease}, "320")
	if got.OK() {
		t.Fatal("expected failure")
	}
	if got.Err != CauseUnavailable {
		t.Errorf("Err = %q, want %q", got.Err, CauseUnavailable)
	}
}
