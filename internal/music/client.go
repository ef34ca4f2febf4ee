package music

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

var logger = log.With().Str("component", "music").Logger()

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36 Edg/135.0.0.0"

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS10,
			MaxVersion: tls.VersionTLS12,
		},
	},
}

type H = map[string]any

// hostPair 是通用的双镜像故障转移策略：主镜像失败或返回
// 空 body 时换备镜像再试一次，不区分来源各自的偏好
type hostPair struct {
	primary  string
	fallback string
}

func (p hostPair) hosts() []string {
	if p.fallback == "" {
		return []string{p.primary}
	}
	return []string{p.primary, p.fallback}
}

// apiPost 向镜像 API 发 JSON POST，返回解析后的 body。
// key 不为空时会把对应参数同时放进 query，部分镜像靠它做缓存区分。
// 所有镜像都失败时返回最后一次的传输层错误，调用方据此区分
// 超时和空结果。
func apiPost(hosts hostPair, path string, k H, key string) (gjson.Result, error) {
	marshal, err := json.Marshal(k)
	if err != nil {
		return gjson.Result{}, err
	}

	var lastErr error
	for _, host := range hosts.hosts() {
		if host == "" {
			continue
		}
		dest := host + path
		if key != "" {
			dest += fmt.Sprintf("?%s=%s", key, url.QueryEscape(fmt.Sprint(k[key])))
		} else {
			dest += "?timestamp=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
		}

		r, err := doJSON("POST", dest, bytes.NewReader(marshal))
		if err != nil {
			lastErr = err
			logger.Warn().Err(err).Str("host", host).Str("path", path).Msg("mirror request failed")
			continue
		}
		if r.Raw != "" {
			return r, nil
		}
	}
	return gjson.Result{}, lastErr
}

// apiGet 向镜像 API 发 GET，双镜像策略同 apiPost
func apiGet(hosts hostPair, path string, k url.Values) (gjson.Result, error) {
	var lastErr error
	for _, host := range hosts.hosts() {
		if host == "" {
			continue
		}
		r, err := doJSON("GET", fmt.Sprintf("%s%s?%s", host, path, k.Encode()), nil)
		if err != nil {
			lastErr = err
			logger.Warn().Err(err).Str("host", host).Str("path", path).Msg("mirror request failed")
			continue
		}
		if r.Raw != "" {
			return r, nil
		}
	}
	return gjson.Result{}, lastErr
}

// rawGet 直接请求完整 URL，不走镜像转移
func rawGet(u string, k url.Values) (gjson.Result, error) {
	if len(k) > 0 {
		u = u + "?" + k.Encode()
	}
	r, err := doJSON("GET", u, nil)
	if err != nil {
		logger.Warn().Err(err).Str("url", u).Msg("request failed")
		return gjson.Result{}, err
	}
	return r, nil
}

func doJSON(method, dest string, body io.Reader) (gjson.Result, error) {
	req, err := http.NewRequest(method, dest, body)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("User-Agent", browserUA)
	if method == "POST" {
		req.Header.Set("content-type", "application/json;charset=UTF-8")
	}
	response, err := httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer response.Body.Close()

	all, err := io.ReadAll(response.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if response.StatusCode >= 400 {
		return gjson.Result{}, fmt.Errorf("status %d", response.StatusCode)
	}
	return gjson.ParseBytes(all), nil
}

// causeOf 把传输层错误折叠成解析链路用的原因串
func causeOf(err error) string {
	if err == nil {
		return CauseEmpty
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return CauseTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return CauseTimeout
	}
	return CauseUnavailable
}

// SetLogLevel 调整包内日志级别，测试时静音用
func SetLogLevel(l zerolog.Level) {
	logger = logger.Level(l)
}
