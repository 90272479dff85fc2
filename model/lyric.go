package model

// CookedLyricVersion 当前歌词结构版本号，低于该版本的缓存一律视为失效
const CookedLyricVersion = 3

// LyricType 歌词排版约定，按副轨道组合推断
type LyricType string

const (
	LyricTypeChinese   LyricType = "chinese"   // 只有原文
	LyricTypeEnglish   LyricType = "english"   // 原文 + 翻译
	LyricTypeCantonese LyricType = "cantonese" // 原文 + 音译
	LyricTypeJapanese  LyricType = "japanese"  // 原文 + 翻译 + 音译
)

// LyricLine 单行歌词，t 为秒
type LyricLine struct {
	Time  float64 `json:"t"`
	Text  string  `json:"o"`
	Trans string  `json:"tr,omitempty"`
	Roman string  `json:"ro,omitempty"`
}

// LyricContributor 歌词贡献者信息
type LyricContributor struct {
	UserID   int64  `json:"userId,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Role     string `json:"role,omitempty"`
}

// RawLyric 目录服务返回的原始歌词载荷
type RawLyric struct {
	SongID       string             `json:"songId"`
	NoLyric      bool               `json:"noLyric,omitempty"`     // 纯音乐，无歌词
	Uncollected  bool               `json:"uncollected,omitempty"` // 尚未收录歌词
	Original     string             `json:"original"`
	Translation  string             `json:"translation,omitempty"`
	Romanization string             `json:"romanization,omitempty"`
	VersionInfo  map[string]int     `json:"versionInfo,omitempty"`
	Contributors []LyricContributor `json:"contributors,omitempty"`
}

// CookedLyric 规范化后的歌词结构（v3）
// 不变量：Lines 按时间升序，且不含原文为空的行；
// 没有可用原文时 Lines 退化为单条占位行。
type CookedLyric struct {
	Version      int                `json:"v"`
	SongID       string             `json:"songId"`
	Type         LyricType          `json:"type"`
	NoLyric      bool               `json:"noLyric,omitempty"`
	Uncollected  bool               `json:"uncollected,omitempty"`
	VersionInfo  map[string]int     `json:"versionInfo,omitempty"`
	Contributors []LyricContributor `json:"contributors,omitempty"`
	Lines        []LyricLine        `json:"lines"`
}
