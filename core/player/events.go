package player

import (
	"sync"

	"Bt1QPlayer/model"
)

// Notifier 播放事件订阅接口，推送无背压。
// 实现不应在回调里同步调用播放器方法，需要时另起协程。
type Notifier interface {
	OnStateChange(st model.PlaybackState)
	OnSongChange(t *model.Track)
	OnLyricChange(l *model.CookedLyric)
	OnLoading(loading bool)
	OnTimeUpdate(seconds float64)

	// OnNotice 用户可见的短提示（失败原因、重试次数等）
	OnNotice(msg string)
}

// Dispatcher 多订阅者事件分发器。
// 支持任意数量订阅者和显式退订，取代单份可被覆盖的回调表。
type Dispatcher struct {
	mu   sync.RWMutex
	next int
	subs map[int]Notifier
}

// NewDispatcher 创建分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[int]Notifier)}
}

// Subscribe 注册订阅者，返回退订函数
func (d *Dispatcher) Subscribe(n Notifier) func() {
	d.mu.Lock()
	id := d.next
	d.next++
	d.subs[id] = n
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *Dispatcher) each(fn func(n Notifier)) {
	d.mu.RLock()
	subs := make([]Notifier, 0, len(d.subs))
	for _, n := range d.subs {
		subs = append(subs, n)
	}
	d.mu.RUnlock()
	for _, n := range subs {
		fn(n)
	}
}

func (d *Dispatcher) OnStateChange(st model.PlaybackState) {
	d.each(func(n Notifier) { n.OnStateChange(st) })
}

func (d *Dispatcher) OnSongChange(t *model.Track) {
	d.each(func(n Notifier) { n.OnSongChange(t) })
}

func (d *Dispatcher) OnLyricChange(l *model.CookedLyric) {
	d.each(func(n Notifier) { n.OnLyricChange(l) })
}

func (d *Dispatcher) OnLoading(loading bool) {
	d.each(func(n Notifier) { n.OnLoading(loading) })
}

func (d *Dispatcher) OnTimeUpdate(seconds float64) {
	d.each(func(n Notifier) { n.OnTimeUpdate(seconds) })
}

func (d *Dispatcher) OnNotice(msg string) {
	d.each(func(n Notifier) { n.OnNotice(msg) })
}
