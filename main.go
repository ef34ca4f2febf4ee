package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qingting-music/qingting/internal/base"
	"github.com/qingting-music/qingting/internal/music"
	"github.com/qingting-music/qingting/internal/proxy"
)

func main() {
	base.InitConfig()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	router := proxy.NewRouter(base.Config.ProxyEnabled, base.Config.ProxyUpgrade, base.Config.ProxyAllowHosts)
	s := &server{
		orch:     music.NewOrchestrator(),
		resolver: music.NewResolver(router),
		router:   router,
		sessions: expirable.NewLRU[string, *music.FailureTracker](1024, nil, time.Hour),
	}

	gin.SetMode(gin.ReleaseMode)
	g := gin.Default()
	g.Use(Cors())

	proxy.NewHandler(router).Register(g)

	g.GET("/api/search", s.searchMusic)
	g.GET("/api/playurl", s.playURL)
	g.GET("/api/lyric", s.getLyric)
	g.GET("/api/suggest", s.suggest)
	g.GET("/api/history", s.getHistory)
	g.DELETE("/api/history", s.clearHistory)
	g.GET("/api/playlist", s.playlistSongs)
	g.GET("/api/cover", s.coverURL)
	g.GET("/api/sources", s.listSources)

	log.Info().Str("addr", base.Config.Addr).Msg("listening")
	if err := http.ListenAndServe(base.Config.Addr, g); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "token,content-type,accesstoken,range")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
