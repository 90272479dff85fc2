package device

// Handlers 设备事件回调，未设置的回调直接忽略。
// OnPrev/OnNext 对应硬件多媒体按键的上一首/下一首信号。
type Handlers struct {
	OnPlay       func()
	OnPause      func()
	OnStop       func()
	OnError      func(err error)
	OnTimeUpdate func(seconds float64)
	OnEnded      func()
	OnPrev       func()
	OnNext       func()
}

// Driver 音频设备驱动抽象。
// 使用顺序：SetHandlers → Bind 绑定播放源 → Play/Pause/Stop/Seek。
type Driver interface {
	SetHandlers(h Handlers)

	// Bind 绑定播放源（本地路径或 HTTP 地址），替换当前源
	Bind(url string) error

	// Play 开始或恢复播放
	Play() error

	// Pause 暂停播放
	Pause() error

	// Stop 停止并释放当前源
	Stop() error

	// Seek 跳转到指定秒数
	Seek(seconds float64) error

	// HasSource 当前是否绑定了播放源
	HasSource() bool
}
