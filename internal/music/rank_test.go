package music

import (
	"reflect"
	"testing"
)

func song(id, name, album string, artist ...string) *Song {
	return &Song{
		ID:     id,
		Name:   name,
		Artist: artist,
		Album:  album,
		Source: SourceNetease,
	}
}

func TestRelevanceExactArtist(t *testing.T) {
	s := song("1", "晴天", "叶惠美", "周杰伦")
	got := Relevance(s, "周杰伦")
	if got < 90 {
		t.Errorf("Relevance(晴天/周杰伦, 周杰伦) = %d, want >= 90", got)
	}
}

func TestRelevanceUnrelated(t *testing.T) {
	s := song("2", "Bohemian Rhapsody", "A Night at the Opera", "Queen")
	got := Relevance(s, "周杰伦")
	if got >= DefaultMinScore {
		t.Errorf("Relevance(unrelated) = %d, want < %d", got, DefaultMinScore)
	}
}

func TestRelevanceNameExact(t *testing.T) {
	s := song("3", "晴天", UnknownAlbum, UnknownArtist)
	got := Relevance(s, "晴天")
	if got < scoreNameExact {
		t.Errorf("Relevance = %d, want >= %d", got, scoreNameExact)
	}
}

func TestRelevanceInitials(t *testing.T) {
	with := song("4", "Anti-Hero", "Midnights", "Taylor Swift")
	without := song("5", "Anti-Hero", "Midnights", "Uaylor Uwift")
	if d := Relevance(with, "ts") - Relevance(without, "ts"); d <= 0 {
		t.Errorf("initials bonus missing: diff = %d", d)
	}
}

func TestRelevanceCapped(t *testing.T) {
	s := song("6", "七里香", "七里香", "周杰伦")
	// 歌名、专辑同名时各项加分理论上会越界，必须封顶
	if got := Relevance(s, "七里香"); got > 100 {
		t.Errorf("Relevance = %d, want <= 100", got)
	}
}

func TestFilterAndRankDeterministic(t *testing.T) {
	songs := []*Song{
		song("1", "晴天", "叶惠美", "周杰伦"),
		song("2", "晴天娃娃", UnknownAlbum, "江语晨"),
		song("3", "晴天 (Live)", UnknownAlbum, "周杰伦"),
	}
	first := FilterAndRank(songs, "晴天", DefaultMinScore, DefaultMaxResults)
	for i := 0; i < 10; i++ {
		again := FilterAndRank(songs, "晴天", DefaultMinScore, DefaultMaxResults)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: ordering differs", i)
		}
	}
}

func TestFilterAndRankMaxResults(t *testing.T) {
	var songs []*Song
	for i := 0; i < 250; i++ {
		songs = append(songs, song(string(rune('a'+i%26))+string(rune('0'+i/26)), "晴天", UnknownAlbum, "周杰伦"))
	}
	got := FilterAndRank(songs, "晴天", 0, 100)
	if len(got) > 100 {
		t.Errorf("len = %d, want <= 100", len(got))
	}
}

func TestFilterAndRankMinScore(t *testing.T) {
	songs := []*Song{
		song("1", "晴天", UnknownAlbum, "周杰伦"),
		song("2", "zzzz", UnknownAlbum, "yyyy"),
	}
	got := FilterAndRank(songs, "晴天", DefaultMinScore, DefaultMaxResults)
	for _, s := range got {
		if Relevance(s, "晴天") < DefaultMinScore {
			t.Errorf("song %q below threshold survived", s.Name)
		}
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestFilterAndRankDedup(t *testing.T) {
	a := song("42", "晴天", UnknownAlbum, "周杰伦")
	b := song("42", "晴天", UnknownAlbum, "周杰伦")
	b.Name = "晴天" // 同 id 不同大小写字段也只留一首
	b.Album = "YE HUI MEI"
	got := FilterAndRank([]*Song{a, b}, "晴天", 0, 10)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0] != a {
		t.Error("first occurrence should win")
	}
}

func TestFilterAndRankNoIDDedup(t *testing.T) {
	a := &Song{Name: "晴天", Artist: []string{"周杰伦"}, Source: SourceKuwo}
	b := &Song{Name: "晴天", Artist: []string{"周杰伦"}, Source: SourceKuwo}
	got := FilterAndRank([]*Song{a, b}, "晴天", 0, 10)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}

func TestFilterAndRankStableTies(t *testing.T) {
	a := song("1", "晴天", UnknownAlbum, "周杰伦")
	b := song("2", "晴天", UnknownAlbum, "周杰伦")
	got := FilterAndRank([]*Song{a, b}, "晴天", 0, 10)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("tie order not preserved: %v", ids(got))
	}
}

func ids(songs []*Song) []string {
	var out []string
	for _, s := range songs {
		out = append(out, s.ID)
	}
	return out
}

func TestSimilarity(t *testing.T) {
	testCases := []struct {
		a, b string
		want float64
	}{
		{"abc", "abc", 1},
		{"abc", "abd", 1 - 1.0/3},
		{"", "abc", 0},
		{"", "", 0},
	}
	for _, tc := range testCases {
		if got := similarity(tc.a, tc.b); got != tc.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"abc", "abc", 0},
		{"", "abc", 3},
		{"晴天", "晴天娃娃", 2},
	}
	for _, tc := range testCases {
		if got := levenshtein([]rune(tc.a), []rune(tc.b)); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestLatinInitials(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Taylor Swift", "ts"},
		{"Jay-Z", "jz"},
		{"周杰伦", ""},
		{"the Beatles", "tb"},
	}
	for _, tc := range testCases {
		if got := latinInitials(tc.in); got != tc.want {
			t.Errorf("latinInitials(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
