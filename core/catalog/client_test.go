package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"Bt1QPlayer/model"
)

func newTestClient(handler http.HandlerFunc) (*HTTPClient, func()) {
	srv := httptest.NewServer(handler)
	c := NewHTTPClient(srv.URL, "MUSIC_U=test-cookie")
	return c, srv.Close
}

func TestGetPlaybackInfoSuccess(t *testing.T) {
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/song/url/v1" {
			t.Errorf("路径 = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("level"); got != "exhigh" {
			t.Errorf("320kbps 应映射到 exhigh，实际 %q", got)
		}
		if r.Header.Get("Cookie") == "" {
			t.Error("请求缺少凭证 Cookie")
		}
		fmt.Fprint(w, `{"code":200,"data":[{"id":42,"url":"http://cdn/42.mp3","time":245000}]}`)
	})
	defer done()

	info, err := c.GetPlaybackInfo(context.Background(), "42", 320)
	if err != nil {
		t.Fatalf("出错: %v", err)
	}
	if info.URL != "http://cdn/42.mp3" {
		t.Fatalf("URL = %q", info.URL)
	}
	if info.Duration != 245 {
		t.Fatalf("时长应从毫秒换算为秒，实际 %v", info.Duration)
	}
}

func TestGetPlaybackInfoEmptyURL(t *testing.T) {
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":200,"data":[{"id":42,"url":"","time":0}]}`)
	})
	defer done()

	_, err := c.GetPlaybackInfo(context.Background(), "42", 320)
	var ce *model.CatalogError
	if !errors.As(err, &ce) {
		t.Fatalf("空地址应报目录错误，实际 %v", err)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{301, model.ErrAuthRequired},
		{-462, model.ErrRiskBlocked},
	}
	for _, tc := range cases {
		c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"code":%d,"msg":"rejected"}`, tc.code)
		})
		_, err := c.GetPlaybackInfo(context.Background(), "1", 320)
		done()
		if !errors.Is(err, tc.want) {
			t.Errorf("code %d 应映射到 %v，实际 %v", tc.code, tc.want, err)
		}
	}

	// 其余业务码落到通用目录错误
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":404,"msg":"not found"}`)
	})
	defer done()
	_, err := c.GetPlaybackInfo(context.Background(), "1", 320)
	var ce *model.CatalogError
	if !errors.As(err, &ce) || ce.Code != 404 {
		t.Fatalf("未知业务码应报通用目录错误，实际 %v", err)
	}
}

func TestBitrateLevel(t *testing.T) {
	cases := []struct {
		kbps int
		want string
	}{
		{999, "lossless"},
		{320, "exhigh"},
		{192, "higher"},
		{128, "standard"},
	}
	for _, c := range cases {
		if got := bitrateLevel(c.kbps); got != c.want {
			t.Errorf("bitrateLevel(%d) = %q, 期望 %q", c.kbps, got, c.want)
		}
	}
}

func TestGetLyricFullPayload(t *testing.T) {
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lyric" {
			t.Errorf("路径 = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"code":200,
			"lrc":{"version":12,"lyric":"[00:01.00]原文"},
			"tlyric":{"version":3,"lyric":"[00:01.00]译文"},
			"romalrc":{"version":1,"lyric":"[00:01.00]roman"},
			"lyricUser":{"userid":100,"nickname":"词作者"},
			"transUser":{"userid":200,"nickname":"译者"}
		}`)
	})
	defer done()

	raw, err := c.GetLyric(context.Background(), "42")
	if err != nil {
		t.Fatalf("出错: %v", err)
	}
	if raw.Original == "" || raw.Translation == "" || raw.Romanization == "" {
		t.Fatalf("三个轨道应全部带回: %+v", raw)
	}
	if raw.VersionInfo["lrc"] != 12 || raw.VersionInfo["tlyric"] != 3 {
		t.Fatalf("版本信息 = %+v", raw.VersionInfo)
	}
	if len(raw.Contributors) != 2 {
		t.Fatalf("贡献者 = %+v", raw.Contributors)
	}
	if raw.Contributors[0].Role != "original" || raw.Contributors[1].Role != "translation" {
		t.Fatalf("贡献者角色 = %+v", raw.Contributors)
	}
}

func TestGetLyricNoLyricFlag(t *testing.T) {
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":200,"nolyric":true}`)
	})
	defer done()

	raw, err := c.GetLyric(context.Background(), "42")
	if err != nil {
		t.Fatalf("无歌词是正常结果，不应报错: %v", err)
	}
	if !raw.NoLyric {
		t.Fatal("NoLyric 标记丢失")
	}
}

func TestSearchTracks(t *testing.T) {
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("keywords"); got != "周杰伦" {
			t.Errorf("keywords = %q", got)
		}
		fmt.Fprint(w, `{
			"code":200,
			"result":{
				"songCount":1286,
				"songs":[{
					"id":186016,
					"name":"晴天",
					"artists":[{"id":6452,"name":"周杰伦"}],
					"album":{"id":18875,"name":"叶惠美","picUrl":"http://img/album.jpg"},
					"duration":269000
				}]
			}
		}`)
	})
	defer done()

	tracks, total, err := c.SearchTracks(context.Background(), "周杰伦", 10, 0)
	if err != nil {
		t.Fatalf("出错: %v", err)
	}
	if total != 1286 {
		t.Fatalf("总数 = %d", total)
	}
	if len(tracks) != 1 {
		t.Fatalf("结果数 = %d", len(tracks))
	}
	got := tracks[0]
	if got.ID != "186016" || got.Name != "晴天" {
		t.Fatalf("歌曲 = %+v", got)
	}
	if got.Duration != 269 {
		t.Fatalf("时长应换算为秒，实际 %v", got.Duration)
	}
	if got.ArtistNames() != "周杰伦" {
		t.Fatalf("歌手 = %q", got.ArtistNames())
	}
}

func TestGetCoverURL(t *testing.T) {
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":200,"songs":[{"id":42,"album":{"picUrl":"http://img/base.jpg"}}]}`)
	})
	defer done()

	url, err := c.GetCoverURL(context.Background(), "42")
	if err != nil {
		t.Fatalf("出错: %v", err)
	}
	if url != "http://img/base.jpg" {
		t.Fatalf("封面地址 = %q", url)
	}
}

func TestGetPersonalRadioBatch(t *testing.T) {
	c, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/personal_fm" {
			t.Errorf("路径 = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"code":200,"data":[
			{"id":1,"name":"推荐一","artists":[{"id":9,"name":"某人"}],"duration":200000},
			{"id":2,"name":"推荐二","duration":180000}
		]}`)
	})
	defer done()

	batch, err := c.GetPersonalRadioBatch(context.Background())
	if err != nil {
		t.Fatalf("出错: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("批次大小 = %d", len(batch))
	}
	if batch[0].ID != "1" || batch[1].Duration != 180 {
		t.Fatalf("批次内容 = %+v", batch)
	}
}
