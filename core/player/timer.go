package player

import (
	"sync"
	"time"
)

// attemptTimer 可取消的单任务定时器。
// 重新 arm 会先取消上一个任务；回调自身通过播放尝试序号
// 判断是否已被更新的尝试取代（见 handlePlayError）。
type attemptTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// arm 取消旧任务并调度新任务
func (t *attemptTimer) arm(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, fn)
}

// clear 取消待执行的任务
func (t *attemptTimer) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
