package music

import (
	"sort"
	"strings"
	"unicode"
)

// 相关性权重沿用线上调参值，改动前先补基准用例
const (
	scoreNameExact   = 50
	scoreNameSub     = 40
	scoreNameSim     = 30
	scoreArtistExact = 40
	scoreArtistSub   = 35
	scoreArtistSim   = 25
	scoreInitials    = 15
	scoreAlbumSub    = 10
	scoreMax         = 100

	DefaultMinScore   = 30
	DefaultMaxResults = 100
)

// FilterAndRank 对候选曲目去重、打分、排序并截断。
// 纯函数：相同输入永远得到相同的输出顺序。
func FilterAndRank(songs []*Song, keyword string, minScore, maxResults int) []*Song {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	// 去重在打分之前，首次出现者保留
	seen := make(map[string]struct{}, len(songs))
	type scored struct {
		song  *Song
		score int
	}
	var kept []scored
	for _, s := range songs {
		if s == nil {
			continue
		}
		key := s.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if score := Relevance(s, keyword); score >= minScore {
			kept = append(kept, scored{s, score})
		}
	}

	// 同分保持原有相对顺序
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	if len(kept) > maxResults {
		kept = kept[:maxResults]
	}
	out := make([]*Song, len(kept))
	for i, k := range kept {
		out[i] = k.song
	}
	return out
}

// Relevance 计算曲目与关键词的 0~100 相关性得分
func Relevance(song *Song, keyword string) int {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return 0
	}
	name := strings.ToLower(song.Name)
	artist := strings.ToLower(song.ArtistLine())
	album := strings.ToLower(song.Album)

	score := 0
	switch {
	// 关键词整串命中歌名或歌手都算精确命中
	case name == kw || artist == kw:
		score += scoreNameExact
	case strings.Contains(name, kw) || strings.Contains(kw, name):
		score += scoreNameSub
	default:
		score += int(float64(scoreNameSim) * similarity(name, kw))
	}

	switch {
	case artist == kw:
		score += scoreArtistExact
	case strings.Contains(artist, kw) || strings.Contains(kw, artist):
		score += scoreArtistSub
	default:
		score += int(float64(scoreArtistSim) * similarity(artist, kw))
	}

	if album != "" && strings.Contains(album, kw) {
		score += scoreAlbumSub
	}

	// 拼音/英文名缩写命中，比如 "ts" 匹配 Taylor Swift
	if initials := latinInitials(song.ArtistLine()); initials != "" && initials == kw {
		score += scoreInitials
	}

	if score > scoreMax {
		score = scoreMax
	}
	return score
}

// similarity 基于编辑距离的归一化相似度，1 为完全一致
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	if longer == 0 {
		return 0
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longer)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// latinInitials 取歌手串中每个拉丁词的首字母，非拉丁词跳过
func latinInitials(s string) string {
	var sb strings.Builder
	inWord := false
	for _, r := range s {
		isLatin := r < unicode.MaxASCII && unicode.IsLetter(r)
		if isLatin && !inWord {
			sb.WriteRune(unicode.ToLower(r))
		}
		inWord = isLatin
	}
	return sb.String()
}
