package model

import "strconv"

// Artist 歌曲艺术家
type Artist struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Track 队列中的歌曲条目
// 歌曲 ID 统一为字符串，目录服务返回的数字 ID 在边界处转换。
// 入队后除播放时补充的时长外不再修改。
type Track struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Artists  []Artist `json:"artists"`
	Duration float64  `json:"duration,omitempty"` // 秒
}

// ArtistNames 拼接艺术家名称，用于展示
func (t *Track) ArtistNames() string {
	names := ""
	for i, a := range t.Artists {
		if i > 0 {
			names += "/"
		}
		names += a.Name
	}
	return names
}

// IDFromInt64 数字 ID 转字符串 ID
func IDFromInt64(id int64) string {
	return strconv.FormatInt(id, 10)
}

// SameID 判断两个 ID 是否指向同一首歌
// 兼容 "0123" 与 "123" 这类数字串差异，目录数据质量参差不齐
func SameID(a, b string) bool {
	if a == b {
		return true
	}
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	return errA == nil && errB == nil && na == nb
}

// PlaybackInfo 目录服务返回的播放信息
type PlaybackInfo struct {
	URL      string  `json:"url"`
	Duration float64 `json:"duration"` // 秒
}

// PlayMode 列表播放模式
type PlayMode int

const (
	PlayModeLoop PlayMode = iota
	PlayModeRepeatOne
	PlayModeShuffle
)

// Next 返回循环切换后的下一个模式：列表循环 → 单曲循环 → 随机 → 列表循环
func (m PlayMode) Next() PlayMode {
	switch m {
	case PlayModeLoop:
		return PlayModeRepeatOne
	case PlayModeRepeatOne:
		return PlayModeShuffle
	default:
		return PlayModeLoop
	}
}

func (m PlayMode) String() string {
	switch m {
	case PlayModeLoop:
		return "loop"
	case PlayModeRepeatOne:
		return "repeat-one"
	case PlayModeShuffle:
		return "shuffle"
	default:
		return "unknown"
	}
}

// PlaybackState 播放器当前状态快照，仅由编排器修改
type PlaybackState struct {
	IsPlaying    bool     `json:"isPlaying"`
	PlayDuration float64  `json:"playDuration"` // 已播放秒数
	CurrentTrack *Track   `json:"currentTrack,omitempty"`
	PlayMode     PlayMode `json:"playMode"`
	IsFmMode     bool     `json:"isFmMode"`
}

// PlayerSession 持久化的播放会话，用于重启后恢复
type PlayerSession struct {
	LastSongID       string   `json:"lastSongId"`
	LastPlayDuration float64  `json:"lastPlayDuration"`
	PlayMode         PlayMode `json:"playMode"`
	Duration         float64  `json:"duration"`
	Timestamp        int64    `json:"timestamp"` // 毫秒
}

// DownloadedSong 已下载歌曲记录，按歌曲 ID 持久化
type DownloadedSong struct {
	Track
	LocalURI      string `json:"localUri"`
	LocalLyricURI string `json:"localLyricUri,omitempty"`
	CoverURI      string `json:"coverUri,omitempty"`
}
