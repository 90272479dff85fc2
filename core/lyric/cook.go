package lyric

import (
	"math"
	"strings"

	"Bt1QPlayer/model"
)

// Cook 将原始歌词载荷规范化为 v3 结构。
// 原文、翻译、音译三个轨道各自独立解析，副轨道按毫秒取整的时间戳
// 对齐到原文行上，对不上的副轨道行直接丢弃。
func Cook(raw *model.RawLyric, songID string) *model.CookedLyric {
	if raw == nil || raw.NoLyric {
		return fallback(songID, "no lyric", raw)
	}
	if raw.Uncollected {
		return fallback(songID, "lyric not collected yet", raw)
	}

	lines := Parse(raw.Original)
	trans := channelIndex(raw.Translation)
	roman := channelIndex(raw.Romanization)

	for i := range lines {
		key := timeKey(lines[i].Time)
		if t, ok := trans[key]; ok {
			lines[i].Trans = t
		}
		if r, ok := roman[key]; ok {
			lines[i].Roman = r
		}
	}

	return &model.CookedLyric{
		Version:      model.CookedLyricVersion,
		SongID:       songID,
		Type:         classify(len(trans) > 0, len(roman) > 0),
		VersionInfo:  raw.VersionInfo,
		Contributors: raw.Contributors,
		Lines:        lines,
	}
}

// fallback 目录明确表示无歌词时的退化结构，不再尝试解析
func fallback(songID, msg string, raw *model.RawLyric) *model.CookedLyric {
	cooked := &model.CookedLyric{
		Version: model.CookedLyricVersion,
		SongID:  songID,
		Type:    model.LyricTypeChinese,
		Lines:   []model.LyricLine{{Time: 0, Text: msg}},
	}
	if raw != nil {
		cooked.NoLyric = raw.NoLyric
		cooked.Uncollected = raw.Uncollected
	}
	return cooked
}

// classify 按副轨道组合推断排版约定
func classify(hasTrans, hasRoman bool) model.LyricType {
	switch {
	case hasTrans && hasRoman:
		return model.LyricTypeJapanese
	case hasRoman:
		return model.LyricTypeCantonese
	case hasTrans:
		return model.LyricTypeEnglish
	default:
		return model.LyricTypeChinese
	}
}

// channelIndex 解析副轨道并建立 毫秒时间戳 → 文本 的查找表
func channelIndex(text string) map[int64]string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := Parse(text)
	if len(lines) == 1 && lines[0].Text == PlaceholderText {
		return nil
	}
	index := make(map[int64]string, len(lines))
	for _, l := range lines {
		index[timeKey(l.Time)] = l.Text
	}
	return index
}

// timeKey 时间取整到毫秒，消除浮点误差带来的对齐失败
func timeKey(t float64) int64 {
	return int64(math.Round(t * 1000))
}

// IsCooked 判断一个反序列化出来的对象是否为可用的 v3 歌词结构，
// 用于拒绝磁盘上残留的旧版缓存。
func IsCooked(v interface{}) bool {
	switch x := v.(type) {
	case *model.CookedLyric:
		return x != nil && x.Version >= model.CookedLyricVersion && x.Lines != nil
	case model.CookedLyric:
		return x.Version >= model.CookedLyricVersion && x.Lines != nil
	case map[string]interface{}:
		ver, ok := x["v"].(float64)
		if !ok || ver < model.CookedLyricVersion {
			return false
		}
		rawLines, ok := x["lines"].([]interface{})
		if !ok {
			return false
		}
		if len(rawLines) == 0 {
			return true
		}
		first, ok := rawLines[0].(map[string]interface{})
		if !ok {
			return false
		}
		_, hasTime := first["t"].(float64)
		_, hasText := first["o"].(string)
		return hasTime && hasText
	default:
		return false
	}
}
