package device

import (
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"

	"Bt1QPlayer/logger"
	"Bt1QPlayer/model"
)

// BeepDriver 基于 beep 扬声器的真实音频驱动。
// 远端地址先整体拉到临时文件再解码，mp3 流式解码对 HTTP
// 响应体的 Seek 支持不可靠。
type BeepDriver struct {
	mu sync.Mutex

	handlers    Handlers
	sampleRate  beep.SampleRate
	initialized bool

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	started  bool
	tmpFile  string
	tickStop chan struct{}
}

// NewBeepDriver 创建驱动，扬声器在首次绑定时按 44.1kHz 初始化
func NewBeepDriver() *BeepDriver {
	return &BeepDriver{sampleRate: beep.SampleRate(44100)}
}

func (d *BeepDriver) SetHandlers(h Handlers) {
	d.mu.Lock()
	d.handlers = h
	d.mu.Unlock()
}

// Bind 绑定播放源并解码，之后由 Play 启动
func (d *BeepDriver) Bind(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()

	path := url
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		tmp, err := fetchToTemp(url)
		if err != nil {
			return &model.DeviceError{Op: "bind", Err: err}
		}
		d.tmpFile = tmp
		path = tmp
	}

	f, err := os.Open(path)
	if err != nil {
		return &model.DeviceError{Op: "bind", Err: err}
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return &model.DeviceError{Op: "decode", Err: err}
	}

	if !d.initialized {
		if err := speaker.Init(d.sampleRate, d.sampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return &model.DeviceError{Op: "speaker-init", Err: err}
		}
		d.initialized = true
	}

	d.streamer = streamer
	d.format = format
	resampled := beep.Resample(4, format.SampleRate, d.sampleRate, streamer)
	d.ctrl = &beep.Ctrl{Streamer: resampled, Paused: false}
	d.started = false
	return nil
}

// Play 开始或恢复播放
func (d *BeepDriver) Play() error {
	d.mu.Lock()
	if d.ctrl == nil {
		d.mu.Unlock()
		return &model.DeviceError{Op: "play", Err: os.ErrInvalid}
	}

	if !d.started {
		d.started = true
		d.tickStop = make(chan struct{})
		onEnded := d.handlers.OnEnded
		speaker.Play(beep.Seq(d.ctrl, beep.Callback(func() {
			// 回调在扬声器协程里触发，切歌要另起协程避免死锁
			if onEnded != nil {
				go onEnded()
			}
		})))
		go d.tick(d.tickStop)
	} else {
		speaker.Lock()
		d.ctrl.Paused = false
		speaker.Unlock()
	}
	onPlay := d.handlers.OnPlay
	d.mu.Unlock()

	if onPlay != nil {
		onPlay()
	}
	return nil
}

// Pause 暂停播放
func (d *BeepDriver) Pause() error {
	d.mu.Lock()
	if d.ctrl != nil {
		speaker.Lock()
		d.ctrl.Paused = true
		speaker.Unlock()
	}
	onPause := d.handlers.OnPause
	d.mu.Unlock()

	if onPause != nil {
		onPause()
	}
	return nil
}

// Stop 停止并释放当前源
func (d *BeepDriver) Stop() error {
	d.mu.Lock()
	d.stopLocked()
	onStop := d.handlers.OnStop
	d.mu.Unlock()

	if onStop != nil {
		onStop()
	}
	return nil
}

func (d *BeepDriver) stopLocked() {
	if d.tickStop != nil {
		close(d.tickStop)
		d.tickStop = nil
	}
	if d.ctrl != nil {
		speaker.Lock()
		d.ctrl.Paused = true
		speaker.Unlock()
	}
	if d.streamer != nil {
		d.streamer.Close()
		d.streamer = nil
	}
	if d.tmpFile != "" {
		os.Remove(d.tmpFile)
		d.tmpFile = ""
	}
	d.ctrl = nil
	d.started = false
}

// Seek 跳转到指定秒数
func (d *BeepDriver) Seek(seconds float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()
	samples := d.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if err := d.streamer.Seek(samples); err != nil {
		return &model.DeviceError{Op: "seek", Err: err}
	}
	return nil
}

func (d *BeepDriver) HasSource() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctrl != nil
}

// tick 每秒上报一次播放进度
func (d *BeepDriver) tick(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.mu.Lock()
			if d.streamer == nil {
				d.mu.Unlock()
				return
			}
			speaker.Lock()
			pos := d.streamer.Position()
			paused := d.ctrl != nil && d.ctrl.Paused
			speaker.Unlock()
			seconds := d.format.SampleRate.D(pos).Seconds()
			onTime := d.handlers.OnTimeUpdate
			d.mu.Unlock()

			if !paused && onTime != nil {
				onTime(seconds)
			}
		}
	}
}

// fetchToTemp 把远端音频拉到临时文件
func fetchToTemp(url string) (string, error) {
	client := &http.Client{Timeout: 3 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &model.FileIOError{Op: "fetch", Path: url, Err: os.ErrInvalid}
	}

	f, err := os.CreateTemp("", "player_*.mp3")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	logger.Debug("音频已缓存到临时文件", logger.String("path", f.Name()))
	return f.Name(), nil
}
