package music

import (
	"net/url"

	"github.com/tidwall/gjson"
)

type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PictureURL string `json:"pictureUrl"`
	Desc       string `json:"desc"`
	Creator    string `json:"creator"`
	CreatorUid string `json:"creatorUid"`
	PlayCount  int64  `json:"playCount"`
	SongCount  int64  `json:"songCount"`
}

type PlaylistResult struct {
	Playlists  []*Playlist `json:"playlists"`
	Total      int64       `json:"total"`
	FromSource Source      `json:"from_source"`
}

// SearchPlaylist 歌单检索，仅网易和 qq 支持，其余来源返回空
func SearchPlaylist(source Source, o SearchOption) PlaylistResult {
	switch source {
	case SourceNetease, SourceAuto, SourceAggregate:
		return searchNeteasePlaylist(o)
	case SourceQQ:
		return searchQQPlaylist(o)
	}
	return PlaylistResult{FromSource: source}
}

func searchNeteasePlaylist(o SearchOption) PlaylistResult {
	r, _ := neteasePost("/cloudsearch", H{
		"keywords": o.Keyword,
		"type":     neteasePlaylist,
	}, "keywords")

	var res []*Playlist
	r.Get("result.playlists").ForEach(func(_, item gjson.Result) bool {
		if int64(len(res)) >= o.Limit {
			return false
		}
		creator := item.Get("creator")
		res = append(res, &Playlist{
			ID:         item.Get("id").String(),
			Name:       item.Get("name").String(),
			PictureURL: item.Get("coverImgUrl").String(),
			Desc:       item.Get("description").String(),
			Creator:    creator.Get("nickname").String(),
			CreatorUid: creator.Get("userId").String(),
			PlayCount:  item.Get("playCount").Int(),
			SongCount:  item.Get("trackCount").Int(),
		})
		return true
	})
	return PlaylistResult{
		Playlists:  res,
		Total:      r.Get("result.playlistCount").Int(),
		FromSource: SourceNetease,
	}
}

func searchQQPlaylist(o SearchOption) PlaylistResult {
	r, _ := qqGet("/search", url.Values{
		"key": []string{o.Keyword},
		"t":   []string{"2"},
	})

	var res []*Playlist
	r.Get("data.list").ForEach(func(_, item gjson.Result) bool {
		if int64(len(res)) >= o.Limit {
			return false
		}
		creator := item.Get("creator")
		res = append(res, &Playlist{
			ID:         item.Get("dissid").String(),
			Name:       item.Get("dissname").String(),
			PictureURL: item.Get("imgurl").String(),
			Desc:       item.Get("introduction").String(),
			Creator:    creator.Get("name").String(),
			CreatorUid: creator.Get("creator_uin").String(),
			PlayCount:  item.Get("listennum").Int(),
			SongCount:  item.Get("song_count").Int(),
		})
		return true
	})
	return PlaylistResult{
		Playlists:  res,
		Total:      r.Get("data.total").Int(),
		FromSource: SourceQQ,
	}
}

// GetPlaylistSongs 拉取歌单曲目，复用各自的归一化逻辑
func GetPlaylistSongs(source Source, id string) SearchResult {
	switch source {
	case SourceNetease, SourceAuto:
		r, _ := neteasePost("/playlist/track/all", H{"id": id}, "id")
		var songs []*Song
		r.Get("songs").ForEach(func(_, item gjson.Result) bool {
			if !neteasePlayable(item) {
				return true
			}
			songs = append(songs, neteaseSongOf(item))
			return true
		})
		return SearchResult{Songs: songs, Total: int64(len(songs)), FromSource: SourceNetease}
	case SourceQQ:
		r, _ := qqGet("/songlist", url.Values{"id": []string{id}})
		var songs []*Song
		r.Get("data.songlist").ForEach(func(_, item gjson.Result) bool {
			if !qqPlayable(item) {
				return true
			}
			songs = append(songs, qqSongOf(item))
			return true
		})
		return SearchResult{Songs: songs, Total: int64(len(songs)), FromSource: SourceQQ}
	}
	return SearchResult{FromSource: source}
}
