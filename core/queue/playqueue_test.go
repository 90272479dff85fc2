package queue

import (
	"testing"

	"Bt1QPlayer/model"
)

func makeTracks(n int) []model.Track {
	tracks := make([]model.Track, n)
	for i := range tracks {
		tracks[i] = model.Track{ID: model.IDFromInt64(int64(i + 1)), Name: "歌"}
	}
	return tracks
}

func TestRegeneratePermAnchoredBijection(t *testing.T) {
	q := New(makeTracks(5))
	q.SetCurrentIndex(2)
	q.RegeneratePerm(q.CurrentIndex())

	perm := q.Perm()
	if len(perm) != 5 {
		t.Fatalf("置换长度 = %d", len(perm))
	}
	seen := make(map[int]bool)
	for _, v := range perm {
		if v < 0 || v >= 5 || seen[v] {
			t.Fatalf("不是 {0..4} 上的双射: %v", perm)
		}
		seen[v] = true
	}
	if perm[q.PermPos()] != 2 {
		t.Fatalf("游标应映射回当前索引 2，实际 %d", perm[q.PermPos()])
	}
}

func TestAdvanceModulo(t *testing.T) {
	q := New(makeTracks(3))

	if idx, _ := q.Advance(1, model.PlayModeLoop); idx != 1 {
		t.Fatalf("前进一首 = %d", idx)
	}
	if idx, _ := q.Advance(-2, model.PlayModeLoop); idx != 2 {
		t.Fatalf("回退跨界 = %d", idx)
	}
	if idx, _ := q.Advance(1, model.PlayModeLoop); idx != 0 {
		t.Fatalf("前进跨界 = %d", idx)
	}
}

func TestAdvanceShuffleRegeneratesOnLengthChange(t *testing.T) {
	q := New(makeTracks(4))
	q.RegeneratePerm(0)
	q.Unshift(model.Track{ID: "99"})

	idx, ok := q.Advance(1, model.PlayModeShuffle)
	if !ok {
		t.Fatal("非空队列不应返回 false")
	}
	if len(q.Perm()) != 5 {
		t.Fatalf("长度变化后应重新洗牌，置换长度 = %d", len(q.Perm()))
	}
	if idx < 0 || idx >= 5 {
		t.Fatalf("索引越界: %d", idx)
	}
}

func TestAdvanceEmptyQueue(t *testing.T) {
	q := New(nil)
	if _, ok := q.Advance(1, model.PlayModeLoop); ok {
		t.Fatal("空队列应返回 false")
	}
}

func TestIndexOfNumericEquivalence(t *testing.T) {
	q := New([]model.Track{{ID: "0042"}, {ID: "7"}})
	if idx := q.IndexOf("42"); idx != 0 {
		t.Fatalf("数字等价的 ID 应命中，实际 %d", idx)
	}
	if idx := q.IndexOf("8"); idx != -1 {
		t.Fatalf("不存在的 ID 应返回 -1，实际 %d", idx)
	}
}

func TestUnshiftPointsToHead(t *testing.T) {
	q := New(makeTracks(2))
	q.SetCurrentIndex(1)
	q.Unshift(model.Track{ID: "99"})

	if q.CurrentIndex() != 0 {
		t.Fatalf("头插后索引 = %d", q.CurrentIndex())
	}
	cur, ok := q.Current()
	if !ok || cur.ID != "99" {
		t.Fatalf("当前歌曲 = %+v", cur)
	}
	if q.Len() != 3 {
		t.Fatalf("长度 = %d", q.Len())
	}
}

func TestFmQueueFifo(t *testing.T) {
	q := New(nil)
	q.FmPush(model.Track{ID: "a"}, model.Track{ID: "b"})

	first, ok := q.FmPop()
	if !ok || first.ID != "a" {
		t.Fatalf("FIFO 顺序不对: %+v", first)
	}
	if q.FmLen() != 1 {
		t.Fatalf("剩余长度 = %d", q.FmLen())
	}
	q.FmClear()
	if _, ok := q.FmPop(); ok {
		t.Fatal("清空后不应再弹出")
	}
}
