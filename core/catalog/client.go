package catalog

import (
	"context"
	"net/http"
	"time"

	"Bt1QPlayer/model"
)

// Client 目录服务客户端接口。播放与下载子系统只依赖这个接口，
// 测试里用假实现替换。
type Client interface {
	// GetPlaybackInfo 按码率获取播放地址，无可用音源时报错
	GetPlaybackInfo(ctx context.Context, id string, bitrate int) (*model.PlaybackInfo, error)

	// GetLyric 获取原始歌词载荷，无歌词属于正常结果
	GetLyric(ctx context.Context, id string) (*model.RawLyric, error)

	// GetPersonalRadioBatch 获取一批私人电台推荐，可能为空
	GetPersonalRadioBatch(ctx context.Context) ([]model.Track, error)

	// SearchTracks 分页搜索歌曲，返回结果与总数
	SearchTracks(ctx context.Context, keywords string, limit, offset int) ([]model.Track, int, error)

	// GetTrack 获取单曲详情
	GetTrack(ctx context.Context, id string) (*model.Track, error)

	// GetCoverURL 获取专辑封面的远端基础地址
	GetCoverURL(ctx context.Context, id string) (string, error)
}

// HTTPClient 基于 NetEase 风格 API 的目录客户端实现
type HTTPClient struct {
	BaseURL string
	Cookie  string
	HTTP    *http.Client
}

// NewHTTPClient 创建目录客户端
func NewHTTPClient(baseURL, cookie string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Cookie:  cookie,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// createRequest 创建带凭证的请求
func (c *HTTPClient) createRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.Cookie != "" {
		req.Header.Set("Cookie", c.Cookie)
	}
	// 设置 os=pc 确保返回正常码率的地址
	req.AddCookie(&http.Cookie{Name: "os", Value: "pc"})
	return req, nil
}

// apiError 将目录服务业务码映射到统一错误分类
// 301 表示未登录，-462 表示触发风控验证
func apiError(code int, msg string) error {
	switch code {
	case 301:
		return model.ErrAuthRequired
	case -462:
		return model.ErrRiskBlocked
	default:
		return &model.CatalogError{Code: code, Msg: msg}
	}
}
