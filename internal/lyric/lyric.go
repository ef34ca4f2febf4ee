// Package lyric 解析 LRC 歌词文本。
package lyric

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Placeholder 在歌词无法解析时兜底，界面永远有内容可渲染
const Placeholder = "暂无歌词"

// TranslationTolerance 是译文行与原文行配对的时间容差（秒）
const TranslationTolerance = 0.3

type Line struct {
	Time        float64 `json:"time"`
	Text        string  `json:"text"`
	Translation string  `json:"translation,omitempty"`
}

// [mm:ss.xx] / [mm:ss] / [hh:mm:ss.xx]，一行可以带多个时间标签
var timeTag = regexp.MustCompile(`\[(\d+):(\d+)(?::(\d+))?(?:\.(\d+))?\]`)

var metaTag = regexp.MustCompile(`^\[(ti|ar|al|by|offset):`)

var offsetTag = regexp.MustCompile(`\[offset:\s*(-?\d+)\s*\]`)

// Parse 把原始 LRC 文本解析为按时间升序的歌词行。
// 全局 offset 标签（毫秒）叠加到每个时间戳上；同一行的多个
// 时间标签各自展开成一行；完全解析不出时间标签的输入返回
// 单行占位，不返回空列表。
func Parse(raw string) []Line {
	var offset float64
	if m := offsetTag.FindStringSubmatch(raw); m != nil {
		ms, _ := strconv.ParseFloat(m[1], 64)
		offset = ms / 1000
	}

	var lines []Line
	for _, row := range strings.Split(raw, "\n") {
		row = strings.TrimRight(row, "\r")
		if strings.TrimSpace(row) == "" {
			continue
		}
		if metaTag.MatchString(strings.TrimSpace(row)) {
			continue
		}

		tags := timeTag.FindAllStringSubmatchIndex(row, -1)
		if len(tags) == 0 {
			continue
		}
		text := strings.TrimSpace(row[tags[len(tags)-1][1]:])
		if text == "" {
			continue
		}
		for _, tag := range tags {
			t := tagSeconds(row, tag) + offset
			if t < 0 {
				t = 0
			}
			lines = append(lines, Line{Time: t, Text: text})
		}
	}

	if len(lines) == 0 {
		return []Line{{Time: 0, Text: Placeholder}}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})
	return lines
}

func tagSeconds(row string, idx []int) float64 {
	group := func(n int) string {
		if idx[2*n] < 0 {
			return ""
		}
		return row[idx[2*n]:idx[2*n+1]]
	}

	a, _ := strconv.ParseFloat(group(1), 64)
	b, _ := strconv.ParseFloat(group(2), 64)
	sec := a*60 + b
	if g3 := group(3); g3 != "" {
		// 带小时的形式 [hh:mm:ss.xx]
		c, _ := strconv.ParseFloat(g3, 64)
		sec = a*3600 + b*60 + c
	}
	if frac := group(4); frac != "" {
		f, _ := strconv.ParseFloat(frac, 64)
		sec += f / math.Pow(10, float64(len(frac)))
	}
	return sec
}

// MergeTranslation 把翻译版 LRC 按时间就近配到原文行上，
// 时间差超出容差的译文行丢弃
func MergeTranslation(lines []Line, translated []Line, tolerance float64) []Line {
	if tolerance <= 0 {
		tolerance = TranslationTolerance
	}
	if len(translated) == 0 {
		return lines
	}

	out := make([]Line, len(lines))
	copy(out, lines)
	for i := range out {
		best := -1
		bestDiff := tolerance
		for j := range translated {
			diff := math.Abs(out[i].Time - translated[j].Time)
			if diff <= bestDiff {
				best = j
				bestDiff = diff
			}
		}
		if best >= 0 && translated[best].Text != Placeholder {
			out[i].Translation = translated[best].Text
		}
	}
	return out
}
