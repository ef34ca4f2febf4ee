package lyric

import (
	"context"
	"errors"
	"time"
)

// DefaultParseTimeout 限制后台解析的等待时长，单条坏数据
// 不允许无限期挂住调用方
const DefaultParseTimeout = 5 * time.Second

var ErrParseTimeout = errors.New("lyric: parse timed out")

// ParseAsync 在独立 goroutine 里解析，超时或取消返回错误。
// 解析函数本身是纯函数，调用方拿到错误后可以直接改调 Parse
// 同步兜底。超时后后台 goroutine 自行结束，结果被丢弃。
func ParseAsync(ctx context.Context, raw string, timeout time.Duration) ([]Line, error) {
	return parseAsync(ctx, timeout, func() []Line { return Parse(raw) })
}

func parseAsync(ctx context.Context, timeout time.Duration, parse func() []Line) ([]Line, error) {
	if timeout <= 0 {
		timeout = DefaultParseTimeout
	}

	done := make(chan []Line, 1)
	go func() {
		done <- parse()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case lines := <-done:
		return lines, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrParseTimeout
	}
}
