package kuwo

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

type Client struct{}

// NewClient 创建一个kuwo客户端
func NewClient() *Client {
	return &Client{}
}

type KWSearchResp struct {
	Abslist []Abslist `json:"abslist"`
	Total   string    `json:"TOTAL"`
}

type Abslist struct {
	MUSICRID  string `json:"MUSICRID"`
	NAME      string `json:"NAME"`
	ARTIST    string `json:"ARTIST"`
	ALBUM     string `json:"ALBUM"`
	DURATION  string `json:"DURATION"`
	PAY       string `json:"PAY"`
	WebAlbumP string `json:"web_albumpic_short"`
}

// RID 返回去掉 MUSIC_ 前缀的资源 id
func (a *Abslist) RID() string {
	return strings.TrimPrefix(a.MUSICRID, "MUSIC_")
}

func searchAPI(pageNo, pageSize int, key string) string {
	escape := url.QueryEscape(key)
	return fmt.Sprintf(kwSearchAPI, pageNo, pageSize, escape)
}

// SearchMusic 搜索音乐
func (k *Client) SearchMusic(pageNo, pageSize int, kw string) (*KWSearchResp, error) {
	api := searchAPI(pageNo, pageSize, kw)
	resp := HttpGetWithHeader(api, kwSearchHead)
	if resp.Err != nil {
		return nil, resp.Err
	}
	kwResp := new(KWSearchResp)
	if err := json.Unmarshal(resp.Data, kwResp); err != nil {
		return nil, err
	}
	return kwResp, nil
}

// PlayURL 通过移动端签名接口换取直链，br 形如 320kmp3 / 2000kflac。
// 返回直链和上游回报的码率描述。
func (k *Client) PlayURL(rid, br string) (string, string, error) {
	format := "mp3"
	if strings.HasSuffix(br, "flac") {
		format = "flac"
	}
	v := url.Values{
		"f":      []string{"web"},
		"source": []string{"kwplayer_ar_4.4.2.7_B_nuoweida_vh.apk"},
		"format": []string{format},
		"br":     []string{br},
		"type":   []string{"convert_url_with_sign"},
		"rid":    []string{rid},
	}
	resp := HttpGetWithHeader("https://mobi.kuwo.cn/mobi.s?"+v.Encode(), nil)
	if resp.Err != nil {
		return "", "", resp.Err
	}
	r := gjson.ParseBytes(resp.Data)
	u := r.Get("data.url").String()
	if u == "" {
		return "", "", fmt.Errorf("kuwo: no url for rid %s", rid)
	}
	return u, r.Get("data.bitrate").String(), nil
}

// Lyric 取歌词，songinfoandlrc 返回逐行带时间戳的结构，
// 这里拼回标准 LRC 文本交给统一的解析器
func (k *Client) Lyric(rid string) (string, error) {
	api := "https://kuwo.cn/openapi/v1/www/lyric/getlyric?musicId=" + url.QueryEscape(rid)
	resp := HttpGetWithHeader(api, kwSearchHead)
	if resp.Err != nil {
		return "", resp.Err
	}
	var sb strings.Builder
	gjson.ParseBytes(resp.Data).Get("data.lrclist").ForEach(func(_, line gjson.Result) bool {
		sec := line.Get("time").Float()
		min := int(sec) / 60
		rest := sec - float64(min*60)
		fmt.Fprintf(&sb, "[%02d:%05.2f]%s\n", min, rest, line.Get("lineLyric").String())
		return true
	})
	return sb.String(), nil
}

const kwSearchAPI = "https://search.kuwo.cn/r.s?pn=%d&rn=%d&all=%s&ft=music&newsearch=1&alflac=1&itemset=web_2013&client=kt&cluster=0&vermerge=1&rformat=json&encoding=utf8&show_copyright_off=1&pcmp4=1&ver=mbox&plat=pc&vipver=1&devid=11404450&newver=1&issubtitle=1&pcjson=1"

var kwSearchHead = map[string]string{
	"user_agent": `Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36 Edg/110.0.1587.50`,
	"accept":     `text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7`,
	"referer":    `https://kuwo.cn/`,
}
