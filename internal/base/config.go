package base

import (
	"os"
	"reflect"

	"github.com/tidwall/gjson"
)

var Config struct {
	Addr string `config:"addr"`

	// 上游镜像，primary/fallback 成对出现
	NeteaseAPI         string `config:"music.netease"`
	NeteaseAPIFallback string `config:"music.netease_fallback"`
	QQAPI              string `config:"music.qq"`
	QQAPIFallback      string `config:"music.qq_fallback"`
	KugouAPI           string `config:"music.kugou"`
	KugouAPIFallback   string `config:"music.kugou_fallback"`
	AggregateAPI       string `config:"music.aggregate"`
	Cookie             string `config:"music.cookie"`
	BiliSessData       string `config:"music.bili_sessdata"`

	ProxyEnabled    bool     `config:"proxy.enabled"`
	ProxyUpgrade    bool     `config:"proxy.upgrade_https"`
	ProxyAllowHosts []string `config:"proxy.allow_hosts"`

	QualityOrder []string `config:"play.quality_order"`
	AltFallback  bool     `config:"play.source_fallback"`
	SwitchAfter  int64    `config:"play.switch_after"`
	HaltAfter    int64    `config:"play.halt_after"`

	MinScore     int64 `config:"search.min_score"`
	MaxResults   int64 `config:"search.max_results"`
	CacheSize    int64 `config:"search.cache_size"`
	HistorySize  int64 `config:"search.history_size"`
	DefaultLimit int64 `config:"search.default_limit"`
}

func InitConfig() {
	file, _ := os.ReadFile("config.json")
	LoadConfig(string(file))
}

// LoadConfig 从 json 文本加载配置，缺省字段使用默认值
func LoadConfig(text string) {
	g := gjson.Parse(text)

	var (
		v          = reflect.ValueOf(&Config).Elem()
		t          = v.Type()
		stringType = reflect.TypeOf("")
		boolType   = reflect.TypeOf(false)
		intType    = reflect.TypeOf(int64(0))
		sliceType  = reflect.TypeOf([]string{})
	)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("config")
		if name == "" {
			continue
		}
		r := g.Get(name)
		if !r.Exists() {
			continue
		}
		switch field.Type {
		case stringType:
			v.Field(i).SetString(r.String())
		case boolType:
			v.Field(i).SetBool(r.Bool())
		case intType:
			v.Field(i).SetInt(r.Int())
		case sliceType:
			var ss []string
			r.ForEach(func(_, item gjson.Result) bool {
				ss = append(ss, item.String())
				return true
			})
			v.Field(i).Set(reflect.ValueOf(ss))
		default:
			panic("unsupported type")
		}
	}

	applyDefaults()
}

func applyDefaults() {
	c := &Config
	if c.Addr == "" {
		c.Addr = ":8090"
	}
	if c.NeteaseAPI == "" {
		c.NeteaseAPI = "https://163api.qijieya.cn"
	}
	if c.AggregateAPI == "" {
		c.AggregateAPI = "https://music-api.gdstudio.xyz/api.php"
	}
	if len(c.QualityOrder) == 0 {
		c.QualityOrder = []string{"999", "740", "320", "192", "128"}
	}
	if c.SwitchAfter == 0 {
		c.SwitchAfter = 3
	}
	if c.HaltAfter == 0 {
		c.HaltAfter = 6
	}
	if c.MinScore == 0 {
		c.MinScore = 30
	}
	if c.MaxResults == 0 {
		c.MaxResults = 100
	}
	if c.CacheSize == 0 {
		c.CacheSize = 256
	}
	if c.HistorySize == 0 {
		c.HistorySize = 50
	}
	if c.DefaultLimit == 0 {
		c.DefaultLimit = 20
	}
	if len(c.ProxyAllowHosts) == 0 {
		c.ProxyAllowHosts = []string{
			"music.163.com",
			"163api.qijieya.cn",
			"music-api.gdstudio.xyz",
			"y.qq.com",
			"i.y.qq.com",
			"c.y.qq.com",
			"qq.com",
			"kuwo.cn",
			"mobi.kuwo.cn",
			"kugou.com",
			"trackercdn.kugou.com",
			"bilibili.com",
			"bilivideo.com",
			"bilivideo.cn",
			"music.126.net",
			"gtimg.cn",
			"qqmusic.qq.com",
		}
	}
}
