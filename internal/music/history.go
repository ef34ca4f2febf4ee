package music

import (
	"strings"
	"sync"
	"time"
)

type HistoryItem struct {
	Keyword   string `json:"keyword"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}

// History 是容量受限的搜索历史，最新在前，按关键词去重。
// 显式注入编排器，生命周期随服务启停。
type History struct {
	mu    sync.Mutex
	max   int
	items []HistoryItem
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = 50
	}
	return &History{max: max}
}

func (h *History) Add(keyword string) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, it := range h.items {
		if it.Keyword == keyword {
			h.items = append(h.items[:i], h.items[i+1:]...)
			break
		}
	}
	h.items = append([]HistoryItem{{Keyword: keyword, Timestamp: time.Now().UnixMilli()}}, h.items...)
	if len(h.items) > h.max {
		h.items = h.items[:h.max]
	}
}

// Suggest 返回包含 prefix 的历史关键词，忽略大小写，最新在前
func (h *History) Suggest(prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for _, it := range h.items {
		if limit > 0 && len(out) >= limit {
			break
		}
		if prefix == "" || strings.Contains(strings.ToLower(it.Keyword), prefix) {
			out = append(out, it.Keyword)
		}
	}
	return out
}

func (h *History) All() []HistoryItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryItem, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}
