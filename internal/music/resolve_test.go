package music

import (
	"sync"
	"testing"

	"github.com/qingting-music/qingting/internal/proxy"
)

// stubAdapter 是只认部分音质的假源
type stubAdapter struct {
	name        Source
	okQuality   map[string]string // quality -> url
	failCause   string
	searchHits  []*Song
	calls       []string
	lastKeyword string
}

func (s *stubAdapter) Name() Source          { return s.name }
func (s *stubAdapter) NeedsAudioProxy() bool { return false }

func (s *stubAdapter) Search(o SearchOption) SearchResult {
	s.lastKeyword = o.Keyword
	return SearchResult{Songs: s.searchHits, Total: int64(len(s.searchHits)), FromSource: s.name}
}

func (s *stubAdapter) PlayURL(song *Song, quality string) PlayURLResult {
	s.calls = append(s.calls, quality)
	if u, ok := s.okQuality[quality]; ok {
		return PlayURLResult{URL: u, Quality: quality, Source: s.name}
	}
	cause := s.failCause
	if cause == "" {
		cause = CauseEmpty
	}
	return PlayURLResult{Source: s.name, Err: cause}
}

func (s *stubAdapter) Lyric(song *Song) LyricResult {
	return LyricResult{Source: s.name}
}

var testOrder = []string{"999", "740", "320", "192", "128"}

func TestResolveQualityFallback(t *testing.T) {
	stub := &stubAdapter{
		name:      Source("stub-fallback"),
		okQuality: map[string]string{"192": "https://cdn.example/low.mp3"},
	}
	Register(stub)

	rv := NewResolverWith(testOrder, nil, nil)
	got := rv.Resolve(&Song{ID: "1", Name: "x", Artist: []string{"y"}, Source: stub.name}, "999")

	if !got.OK() {
		t.Fatalf("resolve failed: %+v", got)
	}
	if got.Quality != "192" {
		t.Errorf("Quality = %q, want 192", got.Quality)
	}
	if !got.UsedFallback {
		t.Error("UsedFallback = false, want true")
	}
	if want := []string{"999", "740", "320", "192"}; len(stub.calls) != len(want) {
		t.Errorf("attempts = %v, want %v", stub.calls, want)
	}
}

func TestResolveRequestedFirst(t *testing.T) {
	stub := &stubAdapter{
		name:      Source("stub-first"),
		okQuality: map[string]string{"320": "https://cdn.example/a.mp3"},
	}
	Register(stub)

	rv := NewResolverWith(testOrder, nil, nil)
	got := rv.Resolve(&Song{ID: "1", Source: stub.name}, "320")
	if got.Quality != "320" || got.UsedFallback {
		t.Errorf("got %+v, want direct hit on 320", got)
	}
	if len(stub.calls) != 1 || stub.calls[0] != "320" {
		t.Errorf("attempts = %v, want [320]", stub.calls)
	}
}

func TestResolveExhaustedCarriesCause(t *testing.T) {
	stub := &stubAdapter{
		name:      Source("stub-restricted"),
		failCause: CauseRestricted,
	}
	Register(stub)

	rv := NewResolverWith(testOrder, nil, nil)
	got := rv.Resolve(&Song{ID: "1", Source: stub.name}, "999")
	if got.OK() {
		t.Fatal("expected failure")
	}
	if got.LastError != CauseRestricted {
		t.Errorf("LastError = %q, want %q", got.LastError, CauseRestricted)
	}
}

func TestResolveAlternateSource(t *testing.T) {
	primary := &stubAdapter{name: Source("stub-dead")}
	Register(primary)

	alt := &stubAdapter{
		name:       Source("stub-alt"),
		okQuality:  map[string]string{"999": "https://cdn.example/alt.flac"},
		searchHits: []*Song{{ID: "9", Name: "x", Artist: []string{"y"}, Source: Source("stub-alt")}},
	}
	Register(alt)

	rv := NewResolverWith(testOrder, alt, nil)
	got := rv.Resolve(&Song{ID: "1", Name: "x", Artist: []string{"y"}, Source: primary.name}, "999")

	if !got.OK() {
		t.Fatalf("resolve failed: %+v", got)
	}
	if got.UsedSource != alt.Name() {
		t.Errorf("UsedSource = %q, want %q", got.UsedSource, alt.Name())
	}
	if !got.UsedFallback {
		t.Error("UsedFallback = false, want true")
	}
}

func TestResolveUnknownSource(t *testing.T) {
	rv := NewResolverWith(testOrder, nil, nil)
	got := rv.Resolve(&Song{ID: "1", Source: Source("never-registered")}, "320")
	if got.OK() || got.LastError != CauseUnavailable {
		t.Errorf("got %+v, want unavailable failure", got)
	}
}

func TestResolveAppliesProxyRouting(t *testing.T) {
	stub := &stubAdapter{
		name:      Source("stub-proxied"),
		okQuality: map[string]string{"320": "https://m801.music.126.net/abc.mp3"},
	}
	Register(stub)

	router := proxy.NewRouter(true, false, []string{"music.126.net"})
	rv := NewResolverWith(testOrder, nil, router)
	got := rv.Resolve(&Song{ID: "1", Source: stub.name}, "320")
	if got.URL == got.RawURL {
		t.Errorf("URL = %q, want proxied form of %q", got.URL, got.RawURL)
	}
}

func TestResolveAlternateKeywordSkipsPlaceholder(t *testing.T) {
	primary := &stubAdapter{name: Source("stub-dead-kw")}
	Register(primary)
	alt := &stubAdapter{
		name:       Source("stub-alt-kw"),
		okQuality:  map[string]string{"999": "https://cdn.example/alt.flac"},
		searchHits: []*Song{{ID: "9", Name: "晴天", Artist: []string{"周杰伦"}, Source: Source("stub-alt-kw")}},
	}
	Register(alt)

	rv := NewResolverWith(testOrder, alt, nil)
	rv.Resolve(&Song{ID: "1", Name: "晴天", Artist: []string{UnknownArtist}, Source: primary.name}, "999")
	if alt.lastKeyword != "晴天" {
		t.Errorf("alternate keyword = %q, want 晴天", alt.lastKeyword)
	}
}

func TestFailureTracker(t *testing.T) {
	tr := NewFailureTrackerWith(2, 4)

	if got := tr.Failure(); got != ActionContinue {
		t.Errorf("failure 1 = %v, want continue", got)
	}
	if got := tr.Failure(); got != ActionSwitchSource {
		t.Errorf("failure 2 = %v, want switch", got)
	}
	if got := tr.Failure(); got != ActionSwitchSource {
		t.Errorf("failure 3 = %v, want switch", got)
	}
	if got := tr.Failure(); got != ActionHalt {
		t.Errorf("failure 4 = %v, want halt", got)
	}

	tr.Success()
	if tr.Consecutive() != 0 {
		t.Errorf("Consecutive = %d after success, want 0", tr.Consecutive())
	}
	if got := tr.Failure(); got != ActionContinue {
		t.Errorf("failure after reset = %v, want continue", got)
	}
}

func TestFailureTrackerConcurrent(t *testing.T) {
	tr := NewFailureTrackerWith(1000, 2000)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Failure()
		}()
	}
	wg.Wait()
	if got := tr.Consecutive(); got != 100 {
		t.Errorf("Consecutive = %d, want 100", got)
	}
}
