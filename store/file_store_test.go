package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建存储出错: %v", err)
	}
	return s
}

func TestWriteReadJSONRoundtrip(t *testing.T) {
	s := newTestStore(t)

	in := map[string]int{"a_300": 1, "b_640": 1}
	if err := s.WriteJSON(CoverIndex, in); err != nil {
		t.Fatalf("写入出错: %v", err)
	}

	out := make(map[string]int)
	found, err := s.ReadJSON(CoverIndex, &out)
	if err != nil || !found {
		t.Fatalf("读取失败: found=%v err=%v", found, err)
	}
	if len(out) != 2 || out["a_300"] != 1 {
		t.Fatalf("读出内容 = %+v", out)
	}

	// 写入不应残留临时文件
	entries, _ := os.ReadDir(filepath.Dir(s.Abs(CoverIndex)))
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("残留临时文件 %s", e.Name())
		}
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	s := newTestStore(t)

	var v map[string]int
	found, err := s.ReadJSON("不存在.json", &v)
	if err != nil {
		t.Fatalf("缺失文件不应报错: %v", err)
	}
	if found {
		t.Fatal("缺失文件 found 应为 false")
	}
}

func TestWriteJSONCreatesNestedDirs(t *testing.T) {
	s := newTestStore(t)

	path := LyricPath("123")
	if err := s.WriteJSON(path, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("写入嵌套路径出错: %v", err)
	}
	if !s.Exists(path) {
		t.Fatal("嵌套路径文件不存在")
	}
}

func TestMoveReplacesSource(t *testing.T) {
	s := newTestStore(t)

	tmp := TempPath("7", "audio")
	if err := os.MkdirAll(filepath.Dir(s.Abs(tmp)), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Abs(tmp), []byte("mp3"), 0644); err != nil {
		t.Fatal(err)
	}

	dst := MusicPath("7")
	if err := s.Move(tmp, dst); err != nil {
		t.Fatalf("移动出错: %v", err)
	}
	if s.Exists(tmp) {
		t.Fatal("源文件应已消失")
	}
	if !s.Exists(dst) {
		t.Fatal("目标文件不存在")
	}
	data, _ := os.ReadFile(s.Abs(dst))
	if string(data) != "mp3" {
		t.Fatalf("内容 = %q", data)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)

	path := MusicPath("9")
	if err := s.Delete(path); err != nil {
		t.Fatalf("删除不存在的文件应静默成功: %v", err)
	}

	if err := s.WriteJSON(RecordsPath, map[string]string{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(RecordsPath); err != nil {
		t.Fatalf("删除出错: %v", err)
	}
	if s.Exists(RecordsPath) {
		t.Fatal("文件应已删除")
	}
	if err := s.Delete(RecordsPath); err != nil {
		t.Fatalf("重复删除应静默成功: %v", err)
	}
}

func TestLayoutPaths(t *testing.T) {
	if got := MusicPath("42"); got != "music/42.mp3" {
		t.Errorf("MusicPath = %q", got)
	}
	if got := LyricPath("42"); got != "lyric/42.json" {
		t.Errorf("LyricPath = %q", got)
	}
	if got := CoverPath("42", 300); got != "cover/42_300.jpg" {
		t.Errorf("CoverPath = %q", got)
	}
	if got := CoverKey("42", 300); got != "42_300" {
		t.Errorf("CoverKey = %q", got)
	}
	if got := TempPath("42", "audio"); got != "temp/42.audio.tmp" {
		t.Errorf("TempPath = %q", got)
	}
}
