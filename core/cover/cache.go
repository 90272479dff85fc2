package cover

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"Bt1QPlayer/core/catalog"
	"Bt1QPlayer/core/utils"
	"Bt1QPlayer/logger"
	"Bt1QPlayer/store"
)

// baseURLTTL 封面基础地址的内存缓存时长
// 条目数量以接触过的歌曲为上界，访问时惰性判断过期即可，不需要清理线程
const baseURLTTL = 10 * time.Minute

type urlEntry struct {
	url     string
	expires time.Time
}

// Service 封面解析服务。
// 同一 (id, size) 的并发请求共享一次解析（singleflight），
// 已缓存尺寸记录在持久化索引里，命中时不触网。
type Service struct {
	catalog catalog.Client
	store   store.Store
	group   singleflight.Group

	// fetch 可注入的下载函数，默认走 HTTP
	fetch func(url, dst string) error

	mu          sync.Mutex
	urls        map[string]urlEntry // id → 基础地址
	index       map[string]int      // "id_size" → 1
	indexLoaded bool
}

// New 创建封面解析服务
func New(c catalog.Client, s store.Store) *Service {
	svc := &Service{
		catalog: c,
		store:   s,
		urls:    make(map[string]urlEntry),
		index:   make(map[string]int),
	}
	svc.fetch = func(url, dst string) error {
		return utils.DownloadFile(url, s.Abs(dst))
	}
	return svc
}

// SetFetcher 替换下载函数，测试用
func (s *Service) SetFetcher(f func(url, dst string) error) {
	s.fetch = f
}

// Resolve 解析歌曲封面，返回本地路径或远端地址。
// 下载或落盘失败都退化为直接返回远端地址，调用方照常可用。
func (s *Service) Resolve(ctx context.Context, id string, size int) (string, error) {
	key := store.CoverKey(id, size)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.resolve(ctx, id, size)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Service) resolve(ctx context.Context, id string, size int) (string, error) {
	key := store.CoverKey(id, size)
	local := store.CoverPath(id, size)

	// 已缓存过该尺寸，直接给出本地路径
	if s.indexHit(key) {
		return s.store.Abs(local), nil
	}

	base, err := s.baseURL(ctx, id)
	if err != nil {
		return "", fmt.Errorf("解析封面地址失败: %w", err)
	}
	remote := fmt.Sprintf("%s?param=%dy%d", base, size, size)

	tmp := store.TempPath(key, "cover")
	if err := s.fetch(remote, tmp); err != nil {
		logger.Warn("封面下载失败，回退远端地址",
			logger.String("songId", id),
			logger.ErrorField(err))
		return remote, nil
	}

	// Move 内部已带复制回退；仍失败时同样回退远端地址
	if err := s.store.Move(tmp, local); err != nil {
		logger.Warn("封面落盘失败，回退远端地址",
			logger.String("songId", id),
			logger.ErrorField(err))
		s.store.Delete(tmp)
		return remote, nil
	}

	s.recordCached(key)
	return s.store.Abs(local), nil
}

// baseURL 取封面基础地址，带 TTL 内存缓存避免同一首歌反复查目录
func (s *Service) baseURL(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	if e, ok := s.urls[id]; ok && time.Now().Before(e.expires) {
		s.mu.Unlock()
		return e.url, nil
	}
	s.mu.Unlock()

	url, err := s.catalog.GetCoverURL(ctx, id)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.urls[id] = urlEntry{url: url, expires: time.Now().Add(baseURLTTL)}
	s.mu.Unlock()
	return url, nil
}

// indexHit 查持久化索引，首次访问时加载
func (s *Service) indexHit(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.indexLoaded {
		if _, err := s.store.ReadJSON(store.CoverIndex, &s.index); err != nil {
			logger.Warn("封面索引读取失败", logger.ErrorField(err))
			s.index = make(map[string]int)
		}
		if s.index == nil {
			s.index = make(map[string]int)
		}
		s.indexLoaded = true
	}
	_, ok := s.index[key]
	return ok
}

// recordCached 更新索引并异步刷盘
// 索引很小，最后一次写入丢了也无伤大雅
func (s *Service) recordCached(key string) {
	s.mu.Lock()
	s.index[key] = 1
	snapshot := make(map[string]int, len(s.index))
	for k, v := range s.index {
		snapshot[k] = v
	}
	s.mu.Unlock()

	go func() {
		if err := s.store.WriteJSON(store.CoverIndex, snapshot); err != nil {
			logger.Warn("封面索引写入失败", logger.ErrorField(err))
		}
	}()
}
