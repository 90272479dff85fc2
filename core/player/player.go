package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"Bt1QPlayer/core/catalog"
	"Bt1QPlayer/core/device"
	"Bt1QPlayer/core/download"
	"Bt1QPlayer/core/lyric"
	"Bt1QPlayer/core/queue"
	"Bt1QPlayer/logger"
	"Bt1QPlayer/model"
	"Bt1QPlayer/store"
)

const (
	// maxRetries 连续播放失败上限，达到后回到空闲态
	maxRetries = 3

	// sessionRestoreWindow 会话保存后超过该时长不再恢复
	sessionRestoreWindow = 12 * time.Hour
)

// 变量形式便于测试缩短等待
var (
	// playTimeoutDur 从发起播放到设备上报 onPlay 的限时
	playTimeoutDur = 8 * time.Second

	// 重试退避：1500ms + 1000ms × 已重试次数
	retryBackoffBase = 1500 * time.Millisecond
	retryBackoffStep = 1000 * time.Millisecond
)

var (
	// ErrChangeInProgress 上一次切歌尚未完成，并发切歌请求被拒绝
	ErrChangeInProgress = errors.New("正在切换歌曲，请稍候")

	// ErrFmNoPrevious 电台模式没有上一首
	ErrFmNoPrevious = errors.New("电台模式没有上一首")
)

// Player 播放编排器。驱动音频设备完成播放/暂停/切歌/电台模式，
// 失败走统一的有限重试状态机，会话定期持久化。
// 队列和状态只被编排器自己的处理器修改，切歌由重入保护串行化。
type Player struct {
	catalog catalog.Client
	store   store.Store
	driver  device.Driver
	events  *Dispatcher
	bitrate int

	mu          sync.Mutex
	queue       *queue.PlayQueue
	state       model.PlaybackState
	initialized bool

	// changing 换歌重入保护：为真时新的切歌请求直接拒绝
	changing   bool
	fmFetching bool
	retryCount int

	// attempt 播放尝试序号。每次发起新尝试自增，迟到的网络结果、
	// 超时回调与当前序号不符时丢弃，不会污染新尝试的状态。
	attempt uint64

	// bindMu 串行化设备绑定。被超时重试取代的尝试即便已经
	// 走到绑定阶段，也会在这里被按序号丢弃，不会把已死歌曲
	// 的地址重新绑到设备上。
	bindMu sync.Mutex

	playTimeout attemptTimer
	retryTimer  attemptTimer
}

// New 创建播放编排器，collaborator 全部显式注入
func New(c catalog.Client, s store.Store, d device.Driver, onlineBitrate int) *Player {
	return &Player{
		catalog: c,
		store:   s,
		driver:  d,
		events:  NewDispatcher(),
		bitrate: onlineBitrate,
		queue:   queue.New(nil),
	}
}

// Subscribe 注册事件订阅者，返回退订函数
func (p *Player) Subscribe(n Notifier) func() {
	return p.events.Subscribe(n)
}

// Initialize 加载持久化队列与会话。重复调用只重新广播当前状态，
// 供重连的 UI 幂等接入。
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		p.events.OnStateChange(p.state)
		p.events.OnSongChange(p.state.CurrentTrack)
		return nil
	}

	var tracks []model.Track
	if _, err := p.store.ReadJSON(store.PlaylistPath, &tracks); err != nil {
		return fmt.Errorf("加载播放列表失败: %w", err)
	}
	p.queue = queue.New(tracks)

	p.restoreSessionLocked()
	p.bindDriver()

	p.initialized = true
	logger.Info("播放器初始化完成", logger.Int("queueLen", p.queue.Len()))
	p.events.OnStateChange(p.state)
	p.events.OnSongChange(p.state.CurrentTrack)
	return nil
}

// restoreSessionLocked 恢复保存的会话。要求上次歌曲仍在队列里
// 且保存时间在窗口内，否则悄悄丢弃。
func (p *Player) restoreSessionLocked() {
	var sess model.PlayerSession
	found, err := p.store.ReadJSON(store.SessionPath, &sess)
	if err != nil || !found {
		return
	}
	age := time.Since(time.UnixMilli(sess.Timestamp))
	if age > sessionRestoreWindow {
		return
	}
	idx := p.queue.IndexOf(sess.LastSongID)
	if idx < 0 {
		return
	}

	p.queue.SetCurrentIndex(idx)
	track, _ := p.queue.Current()
	if track.Duration == 0 {
		track.Duration = sess.Duration
	}
	p.state.CurrentTrack = &track
	p.state.PlayDuration = sess.LastPlayDuration
	p.state.PlayMode = sess.PlayMode
	logger.Info("恢复播放会话",
		logger.String("songId", sess.LastSongID),
		logger.Float64("playDuration", sess.LastPlayDuration))
}

// bindDriver 绑定设备事件
func (p *Player) bindDriver() {
	p.driver.SetHandlers(device.Handlers{
		OnPlay: p.onDevicePlay,
		OnPause: func() {
			p.mu.Lock()
			p.state.IsPlaying = false
			p.playTimeout.clear()
			p.events.OnStateChange(p.state)
			p.mu.Unlock()
		},
		OnStop: func() {
			p.mu.Lock()
			p.state.IsPlaying = false
			p.playTimeout.clear()
			p.events.OnStateChange(p.state)
			p.mu.Unlock()
		},
		OnError: func(err error) {
			p.mu.Lock()
			seq := p.attempt
			p.mu.Unlock()
			p.handlePlayError(seq, err)
		},
		OnTimeUpdate: func(seconds float64) {
			p.mu.Lock()
			// 切歌过程中的残留进度不上报，避免新歌显示旧进度
			if p.changing {
				p.mu.Unlock()
				return
			}
			p.state.PlayDuration = seconds
			p.events.OnTimeUpdate(seconds)
			p.mu.Unlock()
		},
		OnEnded: p.onDeviceEnded,
		OnPrev:  func() { p.Change(-1) },
		OnNext:  func() { p.Change(1) },
	})
}

func (p *Player) onDevicePlay() {
	p.mu.Lock()
	p.playTimeout.clear()
	p.changing = false
	p.retryCount = 0
	p.state.IsPlaying = true
	p.events.OnStateChange(p.state)
	p.events.OnLoading(false)
	p.mu.Unlock()
}

func (p *Player) onDeviceEnded() {
	p.mu.Lock()
	repeatOne := p.state.PlayMode == model.PlayModeRepeatOne && !p.state.IsFmMode
	p.mu.Unlock()

	if repeatOne {
		p.driver.Seek(0)
		p.driver.Play()
		return
	}
	p.Change(1)
}

// Play 播放指定歌曲。id 为空时从队列头开始；
// id 不在队列里则必须附带歌曲信息，头插后播放。
func (p *Player) Play(id string, info *model.Track) error {
	p.mu.Lock()

	if id == "" {
		if p.queue.Len() == 0 {
			p.events.OnNotice("播放列表为空")
			p.mu.Unlock()
			return model.ErrEmptyQueue
		}
	} else {
		// 显式点播列表歌曲时退出电台模式，恢复持久化的列表队列
		if p.state.IsFmMode {
			p.state.IsFmMode = false
			p.queue.FmClear()
			p.reloadListQueueLocked()
		}
		idx := p.queue.IndexOf(id)
		if idx < 0 {
			if info == nil {
				p.mu.Unlock()
				return model.ErrNotFound
			}
			p.queue.Unshift(*info)
			p.persistPlaylistLocked()
		} else {
			p.queue.SetCurrentIndex(idx)
		}
	}

	p.playCurrentLocked()
	p.mu.Unlock()
	return nil
}

// PlayOrPause 无当前歌曲时等价于 Play；设备播放源被外部重置时
// 重新触发当前歌曲；其余情况在播放/暂停之间切换。
func (p *Player) PlayOrPause() error {
	p.mu.Lock()
	if p.state.CurrentTrack == nil {
		p.mu.Unlock()
		return p.Play("", nil)
	}
	if !p.driver.HasSource() {
		p.playCurrentLocked()
		p.mu.Unlock()
		return nil
	}
	playing := p.state.IsPlaying
	p.mu.Unlock()

	if playing {
		return p.driver.Pause()
	}
	return p.driver.Play()
}

// Change 切换到前/后 delta 首。并发切歌请求被拒绝而非排队；
// 电台模式没有上一首，任何前进都播放电台队列的下一首。
func (p *Player) Change(delta int) error {
	p.mu.Lock()
	if p.changing {
		p.mu.Unlock()
		return ErrChangeInProgress
	}

	if p.state.IsFmMode {
		if delta < 0 {
			p.mu.Unlock()
			return ErrFmNoPrevious
		}
		p.playCurrentLocked()
		p.mu.Unlock()
		return nil
	}

	if _, ok := p.queue.Advance(delta, p.state.PlayMode); !ok {
		p.resetIdleLocked()
		p.mu.Unlock()
		return model.ErrEmptyQueue
	}
	p.playCurrentLocked()
	p.mu.Unlock()
	return nil
}

// Seek 跳转到指定秒数，没有当前歌曲时忽略
func (p *Player) Seek(seconds float64) error {
	p.mu.Lock()
	hasTrack := p.state.CurrentTrack != nil
	p.mu.Unlock()
	if !hasTrack {
		return nil
	}
	return p.driver.Seek(seconds)
}

// ChangeMode 循环切换播放模式：列表循环 → 单曲循环 → 随机。
// 进入随机模式时以当前歌曲为锚重新洗牌。
func (p *Player) ChangeMode() model.PlayMode {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.PlayMode = p.state.PlayMode.Next()
	if p.state.PlayMode == model.PlayModeShuffle {
		p.queue.RegeneratePerm(p.queue.CurrentIndex())
	}
	p.events.OnStateChange(p.state)
	return p.state.PlayMode
}

// StartFmMode 开启私人电台。清空列表队列、停止设备、可选注入
// 种子歌曲，然后拉取一批推荐。批次为空或拉取失败时回退电台状态。
// 并发的开启请求被合并，只有一次在途拉取。
func (p *Player) StartFmMode(seed *model.Track) error {
	p.mu.Lock()
	if p.fmFetching {
		p.mu.Unlock()
		return nil
	}
	p.fmFetching = true
	p.queue.Clear()
	p.queue.FmClear()
	p.state.IsFmMode = true
	if seed != nil {
		p.queue.FmPush(*seed)
	}
	p.mu.Unlock()

	p.driver.Stop()

	batch, err := p.catalog.GetPersonalRadioBatch(context.Background())

	p.mu.Lock()
	p.fmFetching = false
	if err != nil {
		p.state.IsFmMode = false
		p.queue.FmClear()
		p.reloadListQueueLocked()
		p.events.OnNotice("开启私人电台失败")
		p.mu.Unlock()
		return fmt.Errorf("获取电台推荐失败: %w", err)
	}
	p.queue.FmPush(batch...)
	if p.queue.FmLen() == 0 {
		p.state.IsFmMode = false
		p.reloadListQueueLocked()
		p.events.OnNotice("电台暂无推荐歌曲")
		p.mu.Unlock()
		return model.ErrEmptyQueue
	}

	p.playCurrentLocked()
	p.mu.Unlock()
	return nil
}

// ExitFmMode 退出电台模式，恢复持久化的列表队列
func (p *Player) ExitFmMode() error {
	p.mu.Lock()
	if !p.state.IsFmMode {
		p.mu.Unlock()
		return nil
	}

	p.state.IsFmMode = false
	p.queue.FmClear()
	p.state.IsPlaying = false

	p.reloadListQueueLocked()
	p.events.OnStateChange(p.state)
	p.mu.Unlock()

	// 设备回调会重新拿锁，停止动作放在临界区外
	return p.driver.Stop()
}

// reloadListQueueLocked 从持久化存储恢复列表队列，
// 电台模式清空过的列表由此找回。调用方必须持有 p.mu。
func (p *Player) reloadListQueueLocked() {
	var tracks []model.Track
	if _, err := p.store.ReadJSON(store.PlaylistPath, &tracks); err == nil {
		p.queue.Replace(tracks)
	}
}

// SaveSession 持久化当前会话，时长未知时不保存
func (p *Player) SaveSession() error {
	p.mu.Lock()
	track := p.state.CurrentTrack
	if track == nil || track.Duration <= 0 {
		p.mu.Unlock()
		return nil
	}
	sess := model.PlayerSession{
		LastSongID:       track.ID,
		LastPlayDuration: p.state.PlayDuration,
		PlayMode:         p.state.PlayMode,
		Duration:         track.Duration,
		Timestamp:        time.Now().UnixMilli(),
	}
	p.mu.Unlock()
	return p.store.WriteJSON(store.SessionPath, sess)
}

// Shutdown 取消定时器、停止设备并尽力保存会话
func (p *Player) Shutdown() {
	p.playTimeout.clear()
	p.retryTimer.clear()
	p.driver.Stop()
	if err := p.SaveSession(); err != nil {
		logger.Warn("退出时保存会话失败", logger.ErrorField(err))
	}
}

// State 返回当前状态快照
func (p *Player) State() model.PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Queue 返回队列模型，仅供只读访问
func (p *Player) Queue() *queue.PlayQueue {
	return p.queue
}

// playCurrentLocked 播放当前位置。所有进入 Loading 态的转换
// 都经过这里：解析待播歌曲 → 启动 8 秒超时 → 异步解析播放源。
// 调用方必须持有 p.mu。
func (p *Player) playCurrentLocked() {
	p.attempt++
	seq := p.attempt
	p.changing = true
	p.events.OnLoading(true)
	p.playTimeout.arm(playTimeoutDur, func() { p.handlePlayError(seq, model.ErrPlaybackTimeout) })

	if p.state.IsFmMode {
		if track, ok := p.queue.FmPop(); ok {
			go p.prepareAndBind(seq, track)
			return
		}
		// 电台队列耗尽，先补一批
		go p.refillFmAndPlay(seq)
		return
	}

	track, ok := p.queue.Current()
	if !ok {
		p.resetIdleLocked()
		return
	}
	go p.prepareAndBind(seq, track)
}

// refillFmAndPlay 拉取一批电台推荐后继续当前播放尝试
func (p *Player) refillFmAndPlay(seq uint64) {
	batch, err := p.catalog.GetPersonalRadioBatch(context.Background())

	p.mu.Lock()
	if seq != p.attempt {
		p.mu.Unlock()
		return
	}
	if err == nil && len(batch) == 0 {
		err = &model.CatalogError{Code: 200, Msg: "电台推荐为空"}
	}
	if err != nil {
		p.mu.Unlock()
		p.handlePlayError(seq, err)
		return
	}
	p.queue.FmPush(batch...)
	track, _ := p.queue.FmPop()
	p.mu.Unlock()

	p.prepareAndBind(seq, track)
}

// prepareAndBind 解析播放源并交给设备。本地下载可用时优先本地，
// 否则向目录请求在线地址。观察者先收到歌曲/歌词变更，再绑定设备，
// 保证不会拿着旧歌引用收到新设备事件。
func (p *Player) prepareAndBind(seq uint64, track model.Track) {
	var (
		url    string
		cooked *model.CookedLyric
	)

	if rec, ok := download.LocalRecord(p.store, track.ID); ok {
		url = rec.LocalURI
		if rec.Duration > 0 {
			track.Duration = rec.Duration
		}
		if rec.LocalLyricURI != "" {
			var cached model.CookedLyric
			if found, err := p.store.ReadJSON(store.LyricPath(rec.ID), &cached); err == nil && found && lyric.IsCooked(&cached) {
				cooked = &cached
			}
		}
		logger.Info("使用本地下载播放", logger.String("songId", track.ID))
	} else {
		info, err := p.catalog.GetPlaybackInfo(context.Background(), track.ID, p.bitrate)
		if err != nil {
			p.handlePlayError(seq, err)
			return
		}
		url = info.URL
		if info.Duration > 0 {
			track.Duration = info.Duration
		}
	}

	p.mu.Lock()
	if seq != p.attempt {
		// 这次尝试已被超时重试取代，丢弃迟到的结果
		p.mu.Unlock()
		return
	}
	p.state.CurrentTrack = &track
	p.state.PlayDuration = 0
	p.events.OnSongChange(&track)
	p.events.OnLyricChange(cooked)
	p.mu.Unlock()

	if cooked == nil {
		go p.fetchLyric(seq, track.ID)
	}

	p.bindMu.Lock()
	defer p.bindMu.Unlock()
	if !p.attemptAlive(seq) {
		return
	}
	if err := p.driver.Bind(url); err != nil {
		p.handlePlayError(seq, err)
		return
	}
	// 绑定期间可能已被超时重试取代，被取代的尝试不再触发播放
	if !p.attemptAlive(seq) {
		return
	}
	if err := p.driver.Play(); err != nil {
		p.handlePlayError(seq, err)
	}
}

// attemptAlive 判断该播放尝试是否仍是当前尝试
func (p *Player) attemptAlive(seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return seq == p.attempt
}

// fetchLyric 在线歌词按需拉取，失败只记日志
func (p *Player) fetchLyric(seq uint64, id string) {
	raw, err := p.catalog.GetLyric(context.Background(), id)
	if err != nil {
		logger.Debug("歌词拉取失败", logger.String("songId", id), logger.ErrorField(err))
		return
	}
	cooked := lyric.Cook(raw, id)

	p.mu.Lock()
	if seq == p.attempt {
		p.events.OnLyricChange(cooked)
	}
	p.mu.Unlock()
}

// handlePlayError 播放准备与设备故障的统一出口。
// 连续失败达到上限回到空闲态，否则退避后前进到下一首——
// 把"这首歌坏了"和"网络抖动"当同一件事处理（沿用上游策略）。
func (p *Player) handlePlayError(seq uint64, err error) {
	p.mu.Lock()
	if seq != p.attempt {
		p.mu.Unlock()
		return
	}
	p.playTimeout.clear()
	p.changing = false
	p.retryCount++
	rc := p.retryCount
	p.events.OnLoading(false)

	logger.Warn("播放失败",
		logger.Int("retry", rc),
		logger.ErrorField(err))

	if rc >= maxRetries {
		p.events.OnNotice(fmt.Sprintf("连续播放失败 %d 次，已停止: %v", rc, err))
		p.resetIdleLocked()
		p.mu.Unlock()
		return
	}

	if errors.Is(err, model.ErrRiskBlocked) {
		p.events.OnNotice(fmt.Sprintf("请求被风控拦截 (第%d次)，稍后切到下一首", rc))
	} else {
		p.events.OnNotice(fmt.Sprintf("播放失败 (第%d次): %v，即将切到下一首", rc, err))
	}

	backoff := retryBackoffBase + time.Duration(rc)*retryBackoffStep
	p.retryTimer.arm(backoff, func() { p.Change(1) })
	p.mu.Unlock()
}

// resetIdleLocked 回到空闲态：无当前歌曲、计数清零、设备停止
func (p *Player) resetIdleLocked() {
	p.playTimeout.clear()
	p.changing = false
	p.retryCount = 0
	p.state.IsPlaying = false
	p.state.CurrentTrack = nil
	p.state.PlayDuration = 0
	p.events.OnStateChange(p.state)
	go p.driver.Stop()
}

// persistPlaylistLocked 持久化列表队列
func (p *Player) persistPlaylistLocked() {
	if err := p.store.WriteJSON(store.PlaylistPath, p.queue.Tracks()); err != nil {
		logger.Warn("播放列表保存失败", logger.ErrorField(err))
	}
}
