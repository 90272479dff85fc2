package download

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"Bt1QPlayer/logger"
	"Bt1QPlayer/store"
)

// Watcher 监视音乐目录，用户在播放器之外删掉音频文件时
// 同步清掉对应的下载记录，避免记录表指向不存在的文件。
type Watcher struct {
	store    store.Store
	musicDir string
	fw       *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher 创建目录监视器，musicDir 是音频文件所在的绝对路径
func NewWatcher(s store.Store, musicDir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{store: s, musicDir: musicDir, fw: fw, done: make(chan struct{})}, nil
}

// Start 先对账一遍记录表，再开始监视删除/改名事件
func (w *Watcher) Start() error {
	w.reconcile()

	if err := os.MkdirAll(w.musicDir, 0755); err != nil {
		return err
	}
	if err := w.fw.Add(w.musicDir); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-w.done:
				return
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				id := idFromFilename(event.Name)
				if id == "" {
					continue
				}
				logger.Info("音频文件被外部删除，清理下载记录", logger.String("songId", id))
				if err := DeleteRecord(w.store, id); err != nil {
					logger.Warn("下载记录清理失败", logger.String("songId", id), logger.ErrorField(err))
				}
			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				logger.Warn("目录监视错误", logger.ErrorField(err))
			}
		}
	}()
	return nil
}

// Stop 停止监视
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fw.Close()
}

// reconcile 启动时丢弃音频文件已不存在的记录
func (w *Watcher) reconcile() {
	records, err := LoadRecords(w.store)
	if err != nil {
		return
	}
	changed := false
	for id := range records {
		if !w.store.Exists(store.MusicPath(id)) {
			delete(records, id)
			changed = true
			logger.Info("下载记录失效，已移除", logger.String("songId", id))
		}
	}
	if changed {
		if err := w.store.WriteJSON(store.RecordsPath, records); err != nil {
			logger.Warn("下载记录写回失败", logger.ErrorField(err))
		}
	}
}

// idFromFilename 从 "{id}.mp3" 还原歌曲 ID
func idFromFilename(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".mp3") {
		return ""
	}
	return strings.TrimSuffix(base, ".mp3")
}
