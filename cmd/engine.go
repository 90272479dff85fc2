package cmd

import (
	"fmt"

	"Bt1QPlayer/config"
	"Bt1QPlayer/core/catalog"
	"Bt1QPlayer/core/cover"
	"Bt1QPlayer/core/device"
	"Bt1QPlayer/core/download"
	"Bt1QPlayer/core/player"
	"Bt1QPlayer/logger"
	"Bt1QPlayer/model"
	"Bt1QPlayer/store"
)

// engine 命令共享的已装配组件
type engine struct {
	cfg      *config.Config
	store    store.Store
	catalog  catalog.Client
	cover    *cover.Service
	player   *player.Player
	download *download.Manager
	watcher  *download.Watcher
}

// buildEngine 按配置装配全部组件
func buildEngine() (*engine, error) {
	cfg := config.Load()
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     30,
	})

	st, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	cat := catalog.NewHTTPClient(cfg.CatalogBaseURL, cfg.CatalogCookie)
	coverSvc := cover.New(cat, st)
	drv := device.NewBeepDriver()

	e := &engine{
		cfg:      cfg,
		store:    st,
		catalog:  cat,
		cover:    coverSvc,
		player:   player.New(cat, st, drv, cfg.OnlineBitrate),
		download: download.NewManager(cat, st, coverSvc, download.NopWakeLock{}, cfg.DownloadBitrate, cfg.CoverSize),
	}

	if w, err := download.NewWatcher(st, cfg.MusicDir); err == nil {
		if err := w.Start(); err == nil {
			e.watcher = w
		} else {
			logger.Warn("音乐目录监视启动失败", logger.ErrorField(err))
		}
	}
	return e, nil
}

// buildStore 按配置选择存储后端
func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		addr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
		return store.NewRedisStore(addr, cfg.RedisPassword, cfg.RedisDB, cfg.DataDir)
	case "file", "":
		return store.NewFileStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("未知存储后端: %s", cfg.StoreBackend)
	}
}

// shutdown 释放全部组件
func (e *engine) shutdown() {
	if e.watcher != nil {
		e.watcher.Stop()
	}
	e.player.Shutdown()
	if rs, ok := e.store.(*store.RedisStore); ok {
		rs.Close()
	}
}

// consoleNotifier 把播放事件打印到终端
type consoleNotifier struct{}

func (consoleNotifier) OnStateChange(st model.PlaybackState) {
	status := "⏸"
	if st.IsPlaying {
		status = "▶"
	}
	mode := st.PlayMode.String()
	if st.IsFmMode {
		mode = "fm"
	}
	fmt.Printf("%s 模式:%s\n", status, mode)
}

func (consoleNotifier) OnSongChange(t *model.Track) {
	if t == nil {
		return
	}
	fmt.Printf("正在播放: %s - %s\n", t.Name, t.ArtistNames())
}

func (consoleNotifier) OnLyricChange(l *model.CookedLyric) {}

func (consoleNotifier) OnLoading(loading bool) {
	if loading {
		fmt.Println("加载中...")
	}
}

func (consoleNotifier) OnTimeUpdate(seconds float64) {}

func (consoleNotifier) OnNotice(msg string) {
	fmt.Println(msg)
}
