package queue

import (
	"math/rand"
	"time"

	"Bt1QPlayer/model"
)

// PlayQueue 播放队列模型：有序歌曲列表、随机播放的索引置换、
// FM 模式的待播队列。纯数据结构，不做任何 I/O，
// 并发安全由编排器的单一修改者约定保证。
type PlayQueue struct {
	tracks []model.Track
	index  int

	// 随机模式的索引置换与游标，队列长度变化后需要重新生成
	perm    []int
	permPos int

	// FM 待播队列，FIFO 消费，不持久化
	fm []model.Track

	rng *rand.Rand
}

// New 创建播放队列
func New(tracks []model.Track) *PlayQueue {
	return &PlayQueue{
		tracks: append([]model.Track(nil), tracks...),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Len 列表长度
func (q *PlayQueue) Len() int { return len(q.tracks) }

// Tracks 返回列表副本
func (q *PlayQueue) Tracks() []model.Track {
	return append([]model.Track(nil), q.tracks...)
}

// CurrentIndex 当前索引
func (q *PlayQueue) CurrentIndex() int { return q.index }

// SetCurrentIndex 设置当前索引，越界时收拢到合法范围
func (q *PlayQueue) SetCurrentIndex(i int) {
	if i < 0 || i >= len(q.tracks) {
		i = 0
	}
	q.index = i
}

// Current 返回当前歌曲
func (q *PlayQueue) Current() (model.Track, bool) {
	if q.index < 0 || q.index >= len(q.tracks) {
		return model.Track{}, false
	}
	return q.tracks[q.index], true
}

// IndexOf 按 ID 查找，找不到返回 -1
func (q *PlayQueue) IndexOf(id string) int {
	for i, t := range q.tracks {
		if model.SameID(t.ID, id) {
			return i
		}
	}
	return -1
}

// Unshift 头插一首歌并把当前索引指向它
func (q *PlayQueue) Unshift(t model.Track) {
	q.tracks = append([]model.Track{t}, q.tracks...)
	q.index = 0
	q.perm = nil
}

// Replace 整体替换列表
func (q *PlayQueue) Replace(tracks []model.Track) {
	q.tracks = append([]model.Track(nil), tracks...)
	q.index = 0
	q.perm = nil
}

// Clear 清空列表
func (q *PlayQueue) Clear() {
	q.tracks = nil
	q.index = 0
	q.perm = nil
}

// Advance 按播放模式前进/后退 delta 首，返回新的队列索引。
// 列表循环与单曲循环按队列顺序取模移动；随机模式移动的是
// 置换游标，再映射回真实索引。队列为空时返回 false。
func (q *PlayQueue) Advance(delta int, mode model.PlayMode) (int, bool) {
	n := len(q.tracks)
	if n == 0 {
		return 0, false
	}

	if mode == model.PlayModeShuffle {
		// 队列长度变过就重新洗牌，锚定当前歌曲
		if len(q.perm) != n {
			q.RegeneratePerm(q.index)
		}
		q.permPos = ((q.permPos+delta)%n + n) % n
		q.index = q.perm[q.permPos]
		return q.index, true
	}

	q.index = ((q.index+delta)%n + n) % n
	return q.index, true
}

// RegeneratePerm 重新生成随机置换，并让游标落在 anchor 所在位置，
// 保证进入随机模式时当前歌曲不变。
func (q *PlayQueue) RegeneratePerm(anchor int) {
	n := len(q.tracks)
	q.perm = q.rng.Perm(n)
	q.permPos = 0
	if n == 0 {
		return
	}
	if anchor < 0 || anchor >= n {
		anchor = 0
	}
	for i, v := range q.perm {
		if v == anchor {
			q.perm[0], q.perm[i] = q.perm[i], q.perm[0]
			break
		}
	}
}

// Perm 返回当前置换副本，用于检查
func (q *PlayQueue) Perm() []int {
	return append([]int(nil), q.perm...)
}

// PermPos 当前置换游标
func (q *PlayQueue) PermPos() int { return q.permPos }

// FmPush 向 FM 队列追加歌曲
func (q *PlayQueue) FmPush(tracks ...model.Track) {
	q.fm = append(q.fm, tracks...)
}

// FmPop 取出 FM 队列头部歌曲
func (q *PlayQueue) FmPop() (model.Track, bool) {
	if len(q.fm) == 0 {
		return model.Track{}, false
	}
	t := q.fm[0]
	q.fm = q.fm[1:]
	return t, true
}

// FmLen FM 队列长度
func (q *PlayQueue) FmLen() int { return len(q.fm) }

// FmClear 清空 FM 队列
func (q *PlayQueue) FmClear() { q.fm = nil }
