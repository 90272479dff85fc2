package cover

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"Bt1QPlayer/model"
	"Bt1QPlayer/store"
)

// fakeCatalog 只实现封面解析用到的方法，其余直接 panic 以暴露误用
type fakeCatalog struct {
	coverCalls int32
	coverURL   string
	coverErr   error
}

func (f *fakeCatalog) GetCoverURL(ctx context.Context, id string) (string, error) {
	atomic.AddInt32(&f.coverCalls, 1)
	if f.coverErr != nil {
		return "", f.coverErr
	}
	return f.coverURL, nil
}

func (f *fakeCatalog) GetPlaybackInfo(ctx context.Context, id string, bitrate int) (*model.PlaybackInfo, error) {
	panic("不应调用")
}
func (f *fakeCatalog) GetLyric(ctx context.Context, id string) (*model.RawLyric, error) {
	panic("不应调用")
}
func (f *fakeCatalog) GetPersonalRadioBatch(ctx context.Context) ([]model.Track, error) {
	panic("不应调用")
}
func (f *fakeCatalog) SearchTracks(ctx context.Context, keywords string, limit, offset int) ([]model.Track, int, error) {
	panic("不应调用")
}
func (f *fakeCatalog) GetTrack(ctx context.Context, id string) (*model.Track, error) {
	panic("不应调用")
}

func TestResolveIndexHitSkipsNetwork(t *testing.T) {
	cat := &fakeCatalog{coverURL: "http://img/base.jpg"}
	ms := store.NewMemoryStore()
	ms.WriteJSON(store.CoverIndex, map[string]int{store.CoverKey("1", 300): 1})

	svc := New(cat, ms)
	svc.SetFetcher(func(url, dst string) error {
		t.Fatal("索引命中时不应下载")
		return nil
	})

	got, err := svc.Resolve(context.Background(), "1", 300)
	if err != nil {
		t.Fatalf("Resolve 出错: %v", err)
	}
	if got != ms.Abs(store.CoverPath("1", 300)) {
		t.Fatalf("应返回本地路径，实际 %q", got)
	}
	if atomic.LoadInt32(&cat.coverCalls) != 0 {
		t.Fatalf("不应查目录，实际调用 %d 次", cat.coverCalls)
	}
}

func TestResolveConcurrentSharesOneFetch(t *testing.T) {
	cat := &fakeCatalog{coverURL: "http://img/base.jpg"}
	ms := store.NewMemoryStore()
	svc := New(cat, ms)

	var fetches int32
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	svc.SetFetcher(func(url, dst string) error {
		atomic.AddInt32(&fetches, 1)
		entered <- struct{}{}
		<-release
		ms.Put(dst, []byte("jpg"))
		return nil
	})

	var wg sync.WaitGroup
	results := make([]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.Resolve(context.Background(), "1", 300)
	}()
	<-entered // 第一个请求已进入下载并被拦住

	// 第二个请求在第一个仍在途时发起，应合并进同一次解析
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = svc.Resolve(context.Background(), "1", 300)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("并发请求应共享一次下载，实际 %d 次", n)
	}
	if n := atomic.LoadInt32(&cat.coverCalls); n != 1 {
		t.Fatalf("并发请求应共享一次目录查询，实际 %d 次", n)
	}
	if results[0] != results[1] {
		t.Fatalf("两个请求结果不一致: %q vs %q", results[0], results[1])
	}
}

func TestResolveFetchFailureFallsBackToRemote(t *testing.T) {
	cat := &fakeCatalog{coverURL: "http://img/base.jpg"}
	ms := store.NewMemoryStore()
	svc := New(cat, ms)
	svc.SetFetcher(func(url, dst string) error {
		return errors.New("下载超时")
	})

	got, err := svc.Resolve(context.Background(), "1", 300)
	if err != nil {
		t.Fatalf("下载失败应退化而不是报错: %v", err)
	}
	if !strings.HasPrefix(got, "http://img/base.jpg?param=300y300") {
		t.Fatalf("应返回带尺寸参数的远端地址，实际 %q", got)
	}
	if ms.Exists(store.CoverPath("1", 300)) {
		t.Fatal("失败时不应留下本地文件")
	}
}

func TestResolveBaseURLCachedAcrossSizes(t *testing.T) {
	cat := &fakeCatalog{coverURL: "http://img/base.jpg"}
	ms := store.NewMemoryStore()
	svc := New(cat, ms)
	svc.SetFetcher(func(url, dst string) error {
		ms.Put(dst, []byte("jpg"))
		return nil
	})

	if _, err := svc.Resolve(context.Background(), "1", 300); err != nil {
		t.Fatalf("第一次解析出错: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "1", 640); err != nil {
		t.Fatalf("第二次解析出错: %v", err)
	}

	if n := atomic.LoadInt32(&cat.coverCalls); n != 1 {
		t.Fatalf("同一首歌的基础地址应命中内存缓存，目录查询 %d 次", n)
	}
	if !ms.Exists(store.CoverPath("1", 300)) || !ms.Exists(store.CoverPath("1", 640)) {
		t.Fatal("两个尺寸都应已落盘")
	}
}

func TestResolveCatalogErrorPropagates(t *testing.T) {
	cat := &fakeCatalog{coverErr: model.ErrAuthRequired}
	svc := New(cat, store.NewMemoryStore())

	_, err := svc.Resolve(context.Background(), "1", 300)
	if !errors.Is(err, model.ErrAuthRequired) {
		t.Fatalf("应透传目录错误，实际 %v", err)
	}
}
