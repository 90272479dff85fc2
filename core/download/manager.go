package download

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"Bt1QPlayer/core/catalog"
	"Bt1QPlayer/core/cover"
	"Bt1QPlayer/core/lyric"
	"Bt1QPlayer/core/utils"
	"Bt1QPlayer/logger"
	"Bt1QPlayer/model"
	"Bt1QPlayer/store"
)

// ErrDuplicateTask 同一首歌已在队列中或正在下载
var ErrDuplicateTask = errors.New("歌曲已在下载队列中")

// interTaskPause 连续任务之间的固定间隔，避免背靠背压垮目录服务和磁盘
const interTaskPause = 500 * time.Millisecond

// Status 下载任务状态
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusDone        Status = "done"
	StatusFailed      Status = "failed"
)

// Options 下载选项。与回调分开传入，两个参数各有明确类型。
type Options struct {
	Bitrate   int // 0 表示使用管理器默认下载码率
	CoverSize int // 0 表示使用管理器默认封面尺寸
}

// Events 任务生命周期回调
type Events interface {
	OnStart(track model.Track)
	OnComplete(rec *model.DownloadedSong)
	OnError(track model.Track, err error)
}

// WakeLock 队列活跃期间阻止显示器休眠
// 队列从空变为非空时获取，排空时释放，与单个任务成败无关
type WakeLock interface {
	Acquire()
	Release()
}

// NopWakeLock 空实现
type NopWakeLock struct{}

func (NopWakeLock) Acquire() {}
func (NopWakeLock) Release() {}

// Task 下载任务，身份是歌曲 ID，同一 ID 同时最多一个活跃任务
type Task struct {
	ID      string
	Track   model.Track
	Options Options
	Events  Events
	Status  Status
}

// Manager 串行下载队列。任何时刻只有一个工作协程在处理任务，
// 任务内部对目录请求和文件放置做并发扇出。
type Manager struct {
	catalog   catalog.Client
	store     store.Store
	cover     *cover.Service
	wake      WakeLock
	bitrate   int
	coverSize int

	// fetch 可注入的下载函数，测试里替换
	fetch func(url, dst string) error

	mu      sync.Mutex
	queue   []*Task
	current *Task
	running bool
	wg      sync.WaitGroup
}

// NewManager 创建下载队列管理器
func NewManager(c catalog.Client, s store.Store, coverSvc *cover.Service, wake WakeLock, bitrate, coverSize int) *Manager {
	if wake == nil {
		wake = NopWakeLock{}
	}
	m := &Manager{
		catalog:   c,
		store:     s,
		cover:     coverSvc,
		wake:      wake,
		bitrate:   bitrate,
		coverSize: coverSize,
	}
	m.fetch = func(url, dst string) error {
		return utils.DownloadFile(url, s.Abs(dst))
	}
	return m
}

// SetFetcher 替换音频下载函数，测试用
func (m *Manager) SetFetcher(f func(url, dst string) error) {
	m.fetch = f
}

// AddTask 入队下载任务。同一歌曲已在队列中或正在下载时拒绝。
func (m *Manager) AddTask(track model.Track, opts Options, events Events) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && model.SameID(m.current.Track.ID, track.ID) {
		return ErrDuplicateTask
	}
	for _, t := range m.queue {
		if model.SameID(t.Track.ID, track.ID) {
			return ErrDuplicateTask
		}
	}

	if opts.Bitrate == 0 {
		opts.Bitrate = m.bitrate
	}
	if opts.CoverSize == 0 {
		opts.CoverSize = m.coverSize
	}

	m.queue = append(m.queue, &Task{
		ID:      uuid.NewString(),
		Track:   track,
		Options: opts,
		Events:  events,
		Status:  StatusPending,
	})
	logger.Info("下载任务入队",
		logger.String("songId", track.ID),
		logger.String("name", track.Name))

	if !m.running {
		m.running = true
		m.wake.Acquire()
		m.wg.Add(1)
		go m.loop()
	}
	return nil
}

// QueueLen 返回等待中的任务数（不含正在执行的）
func (m *Manager) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Wait 等待队列排空，测试和命令行工具用
func (m *Manager) Wait() {
	m.wg.Wait()
}

// loop 单工作协程，逐个取任务执行直到排空
func (m *Manager) loop() {
	defer m.wg.Done()
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			// 释放与 running 翻转同在临界区内，并发入队的 Acquire
			// 不可能插进两者之间
			m.running = false
			m.current = nil
			m.wake.Release()
			m.mu.Unlock()
			return
		}
		task := m.queue[0]
		m.queue = m.queue[1:]
		task.Status = StatusDownloading
		m.current = task
		m.mu.Unlock()

		m.process(task)

		m.mu.Lock()
		m.current = nil
		m.mu.Unlock()

		time.Sleep(interTaskPause)
	}
}

// process 执行单个任务：先并发请求播放地址/歌词/封面，
// 再并发做音频放置与歌词落盘。音频决定任务成败，歌词和封面
// 失败只降级不失败。
func (m *Manager) process(task *Task) {
	id := task.Track.ID
	if task.Events != nil {
		task.Events.OnStart(task.Track)
	}
	ctx := context.Background()

	var (
		info     *model.PlaybackInfo
		infoErr  error
		raw      *model.RawLyric
		coverURI string
	)

	var fetchWg sync.WaitGroup
	fetchWg.Add(3)
	go func() {
		defer fetchWg.Done()
		info, infoErr = m.catalog.GetPlaybackInfo(ctx, id, task.Options.Bitrate)
	}()
	go func() {
		defer fetchWg.Done()
		var err error
		raw, err = m.catalog.GetLyric(ctx, id)
		if err != nil {
			logger.Warn("歌词获取失败，忽略", logger.String("songId", id), logger.ErrorField(err))
			raw = nil
		}
	}()
	go func() {
		defer fetchWg.Done()
		if m.cover == nil {
			return
		}
		uri, err := m.cover.Resolve(ctx, id, task.Options.CoverSize)
		if err != nil {
			logger.Warn("封面获取失败，忽略", logger.String("songId", id), logger.ErrorField(err))
			return
		}
		coverURI = uri
	}()
	fetchWg.Wait()

	if infoErr != nil {
		m.fail(task, infoErr)
		return
	}

	musicPath := store.MusicPath(id)
	lyricPath := store.LyricPath(id)

	var (
		placeWg  sync.WaitGroup
		audioErr error
		lyricOK  bool
	)
	placeWg.Add(2)
	go func() {
		defer placeWg.Done()
		tmp := store.TempPath(id, "audio")
		if err := m.fetch(info.URL, tmp); err != nil {
			audioErr = err
			return
		}
		if err := m.store.Move(tmp, musicPath); err != nil {
			m.store.Delete(tmp)
			audioErr = err
		}
	}()
	go func() {
		defer placeWg.Done()
		if raw == nil {
			return
		}
		cooked := lyric.Cook(raw, id)
		if err := m.store.WriteJSON(lyricPath, cooked); err != nil {
			logger.Warn("歌词落盘失败，忽略", logger.String("songId", id), logger.ErrorField(err))
			return
		}
		lyricOK = true
	}()
	placeWg.Wait()

	if audioErr != nil {
		m.fail(task, audioErr)
		return
	}

	rec := &model.DownloadedSong{
		Track:    task.Track,
		LocalURI: m.store.Abs(musicPath),
		CoverURI: coverURI,
	}
	if info.Duration > 0 {
		rec.Duration = info.Duration
	}
	if lyricOK {
		rec.LocalLyricURI = m.store.Abs(lyricPath)
	}

	if err := SaveRecord(m.store, rec); err != nil {
		// 文件已就位，记录表写失败只告警，下次下载会覆盖补齐
		logger.Error("下载记录保存失败", logger.String("songId", id), logger.ErrorField(err))
	}

	task.Status = StatusDone
	logger.Info("下载完成", logger.String("songId", id), logger.String("name", task.Track.Name))
	if task.Events != nil {
		task.Events.OnComplete(rec)
	}
}

// fail 标记失败并清理该歌曲产生的所有半成品文件
func (m *Manager) fail(task *Task, err error) {
	task.Status = StatusFailed
	m.cleanup(task.Track.ID, task.Options.CoverSize)
	logger.Error("下载失败",
		logger.String("songId", task.Track.ID),
		logger.String("name", task.Track.Name),
		logger.ErrorField(err))
	if task.Events != nil {
		task.Events.OnError(task.Track, err)
	}
}

// cleanup 尽力删除音频、歌词、封面与临时文件，失败静默容忍
func (m *Manager) cleanup(id string, coverSize int) {
	m.store.Delete(store.MusicPath(id))
	m.store.Delete(store.LyricPath(id))
	m.store.Delete(store.CoverPath(id, coverSize))
	m.store.Delete(store.TempPath(id, "audio"))
}
