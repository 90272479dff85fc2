package store

import (
	"fmt"
	"path"
)

// 持久化文档布局。键名保持稳定，老版本写入的数据要能被新版本读到。
const (
	PlaylistPath = "playlist.json"         // []model.Track
	RecordsPath  = "downloaded_songs.json" // map[id]model.DownloadedSong
	SessionPath  = "player_session.json"   // model.PlayerSession
	CoverIndex   = "cover_cache.json"      // map["id_size"]int
)

// MusicPath 歌曲音频的规范存放路径
func MusicPath(id string) string {
	return path.Join("music", id+".mp3")
}

// LyricPath 规范化歌词的存放路径
func LyricPath(id string) string {
	return path.Join("lyric", id+".json")
}

// CoverPath 指定尺寸封面的存放路径
func CoverPath(id string, size int) string {
	return path.Join("cover", fmt.Sprintf("%s_%d.jpg", id, size))
}

// CoverKey 封面缓存索引键
func CoverKey(id string, size int) string {
	return fmt.Sprintf("%s_%d", id, size)
}

// TempPath 下载用的临时路径，后缀区分用途避免互相覆盖
func TempPath(id, kind string) string {
	return path.Join("temp", fmt.Sprintf("%s.%s.tmp", id, kind))
}
