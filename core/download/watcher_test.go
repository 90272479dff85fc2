package download

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"Bt1QPlayer/model"
	"Bt1QPlayer/store"
)

func TestReconcileDropsOrphanRecords(t *testing.T) {
	ms := store.NewMemoryStore()
	SaveRecord(ms, &model.DownloadedSong{Track: model.Track{ID: "1"}})
	SaveRecord(ms, &model.DownloadedSong{Track: model.Track{ID: "2"}})
	ms.Put(store.MusicPath("1"), []byte("mp3"))

	w := &Watcher{store: ms}
	w.reconcile()

	records, err := LoadRecords(ms)
	if err != nil {
		t.Fatalf("读取记录出错: %v", err)
	}
	if _, ok := records["1"]; !ok {
		t.Fatal("音频仍在的记录不应被清理")
	}
	if _, ok := records["2"]; ok {
		t.Fatal("音频缺失的记录应被清理")
	}
}

func TestWatcherRemovesRecordOnDelete(t *testing.T) {
	root := t.TempDir()
	fs, err := store.NewFileStore(root)
	if err != nil {
		t.Fatal(err)
	}

	musicDir := filepath.Join(root, "music")
	if err := os.MkdirAll(musicDir, 0755); err != nil {
		t.Fatal(err)
	}
	audio := filepath.Join(musicDir, "5.mp3")
	if err := os.WriteFile(audio, []byte("mp3"), 0644); err != nil {
		t.Fatal(err)
	}
	SaveRecord(fs, &model.DownloadedSong{Track: model.Track{ID: "5"}})

	w, err := NewWatcher(fs, musicDir)
	if err != nil {
		t.Fatalf("创建监视器出错: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("启动监视器出错: %v", err)
	}
	defer w.Stop()

	if err := os.Remove(audio); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		records, _ := LoadRecords(fs)
		if _, ok := records["5"]; !ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("外部删除后记录未被清理")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestIDFromFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/data/music/42.mp3", "42"},
		{"42.mp3", "42"},
		{"/data/music/42.flac", ""},
		{"/data/music/notes.txt", ""},
	}
	for _, c := range cases {
		if got := idFromFilename(c.in); got != c.want {
			t.Errorf("idFromFilename(%q) = %q, 期望 %q", c.in, got, c.want)
		}
	}
}
