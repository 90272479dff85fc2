package lyric

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"Bt1QPlayer/model"
)

// PlaceholderText 没有任何可用歌词时的占位行文本
const PlaceholderText = "no lyrics"

// 时间标签：分:秒 后可跟 1~3 位小数部分，分隔符兼容点号和冒号，
// 目录数据里两种写法都出现过
var timeTagRe = regexp.MustCompile(`^\[(\d{1,3}):(\d{1,2})(?:[.:](\d{1,3}))?\]`)

// Parse 将 LRC 风格文本解析为按时间升序的歌词行。
// 一行可以带多个时间标签共用同一段文本，各标签各出一条；
// 去掉标签后文本为空的行整行丢弃（纯计时标记）。
// 解析永远成功：没有任何行存活时返回单条占位行。
func Parse(text string) []model.LyricLine {
	var lines []model.LyricLine

	for _, physical := range strings.Split(text, "\n") {
		rest := physical
		var times []float64
		for {
			m := timeTagRe.FindStringSubmatch(rest)
			if m == nil {
				break
			}
			times = append(times, tagSeconds(m[1], m[2], m[3]))
			rest = rest[len(m[0]):]
		}
		if len(times) == 0 {
			continue
		}
		content := strings.TrimSpace(rest)
		if content == "" {
			continue
		}
		for _, t := range times {
			lines = append(lines, model.LyricLine{Time: t, Text: content})
		}
	}

	if len(lines) == 0 {
		return []model.LyricLine{{Time: 0, Text: PlaceholderText}}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})
	return lines
}

// tagSeconds 计算标签对应的秒数
// 小数部分按位数解释：1 位是十分之一秒，2 位是百分之一秒，3 位是毫秒
func tagSeconds(min, sec, frac string) float64 {
	m, _ := strconv.Atoi(min)
	s, _ := strconv.Atoi(sec)
	total := float64(m*60 + s)
	if frac != "" {
		f, _ := strconv.Atoi(frac)
		switch len(frac) {
		case 1:
			total += float64(f) / 10
		case 2:
			total += float64(f) / 100
		default:
			total += float64(f) / 1000
		}
	}
	return total
}
