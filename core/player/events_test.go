package player

import "testing"

func TestDispatcherUnsubscribe(t *testing.T) {
	d := NewDispatcher()

	a := &fakeNotifier{}
	b := &fakeNotifier{}
	unsubA := d.Subscribe(a)
	d.Subscribe(b)

	d.OnNotice("第一条")
	unsubA()
	d.OnNotice("第二条")

	if len(a.notices) != 1 {
		t.Fatalf("退订后不应再收到事件: %v", a.notices)
	}
	if len(b.notices) != 2 {
		t.Fatalf("未退订者应收到全部事件: %v", b.notices)
	}

	// 重复退订应无害
	unsubA()
	d.OnNotice("第三条")
	if len(b.notices) != 3 {
		t.Fatalf("事件数 = %d", len(b.notices))
	}
}
