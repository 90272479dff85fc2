package lyric

import (
	"encoding/json"
	"testing"

	"Bt1QPlayer/model"
)

const original = "[00:01.00]原文一\n[00:02.00]原文二"

func TestCookClassification(t *testing.T) {
	trans := "[00:01.00]译文一"
	roman := "[00:01.00]roman-1"

	cases := []struct {
		name string
		raw  *model.RawLyric
		want model.LyricType
	}{
		{"仅原文", &model.RawLyric{Original: original}, model.LyricTypeChinese},
		{"原文加翻译", &model.RawLyric{Original: original, Translation: trans}, model.LyricTypeEnglish},
		{"原文加音译", &model.RawLyric{Original: original, Romanization: roman}, model.LyricTypeCantonese},
		{"全部三轨", &model.RawLyric{Original: original, Translation: trans, Romanization: roman}, model.LyricTypeJapanese},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cooked := Cook(c.raw, "1")
			if cooked.Type != c.want {
				t.Fatalf("分类 = %s, 期望 %s", cooked.Type, c.want)
			}
			if cooked.Version != model.CookedLyricVersion {
				t.Fatalf("版本 = %d", cooked.Version)
			}
		})
	}
}

func TestCookAttachesAtExactTimestamp(t *testing.T) {
	raw := &model.RawLyric{
		Original:    "[00:01.00]一\n[00:02.00]二",
		Translation: "[00:01.00]one\n[00:03.00]孤儿译文",
	}
	cooked := Cook(raw, "1")

	if cooked.Lines[0].Trans != "one" {
		t.Fatalf("第一行未挂上翻译: %+v", cooked.Lines[0])
	}
	if cooked.Lines[1].Trans != "" {
		t.Fatalf("时间对不上的翻译不应被挂载: %+v", cooked.Lines[1])
	}
}

func TestCookNoLyricShortCircuits(t *testing.T) {
	cooked := Cook(&model.RawLyric{NoLyric: true, Original: "[[[[损坏数据"}, "9")
	if !cooked.NoLyric {
		t.Fatal("NoLyric 标记丢失")
	}
	if len(cooked.Lines) != 1 || cooked.Lines[0].Time != 0 {
		t.Fatalf("期望单条占位行: %+v", cooked.Lines)
	}

	cooked = Cook(nil, "9")
	if len(cooked.Lines) != 1 {
		t.Fatalf("nil 载荷也应返回占位结构: %+v", cooked.Lines)
	}
}

func TestIsCooked(t *testing.T) {
	cooked := Cook(&model.RawLyric{Original: original}, "1")
	if !IsCooked(cooked) {
		t.Fatal("Cook 的输出应通过 IsCooked")
	}

	// 经 JSON 往返后以通用 map 形态判断，模拟读旧缓存的场景
	data, _ := json.Marshal(cooked)
	var generic map[string]interface{}
	json.Unmarshal(data, &generic)
	if !IsCooked(generic) {
		t.Fatal("JSON 往返后的输出应通过 IsCooked")
	}

	bad := []interface{}{
		map[string]interface{}{"v": 2.0, "lines": []interface{}{}},
		map[string]interface{}{"v": 3.0},
		map[string]interface{}{"lines": []interface{}{}},
		"not an object",
		nil,
	}
	for i, b := range bad {
		if IsCooked(b) {
			t.Errorf("用例 %d 不应通过 IsCooked: %+v", i, b)
		}
	}
}
