package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"Bt1QPlayer/logger"
	"Bt1QPlayer/model"
)

// bitrateLevel 码率到 API level 参数的映射
func bitrateLevel(kbps int) string {
	switch {
	case kbps >= 999:
		return "lossless"
	case kbps >= 320:
		return "exhigh"
	case kbps >= 192:
		return "higher"
	default:
		return "standard"
	}
}

// GetPlaybackInfo 获取歌曲播放地址与时长
func (c *HTTPClient) GetPlaybackInfo(ctx context.Context, id string, bitrate int) (*model.PlaybackInfo, error) {
	reqURL := fmt.Sprintf("%s/song/url/v1?id=%s&level=%s", c.BaseURL, url.QueryEscape(id), bitrateLevel(bitrate))
	logger.Debug("获取歌曲URL", logger.String("songId", id), logger.Int("bitrate", bitrate))

	req, err := c.createRequest(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Data []struct {
			ID   int64  `json:"id"`
			URL  string `json:"url"`
			Time int    `json:"time"` // 毫秒
		} `json:"data"`
		Code int    `json:"code"`
		Msg  string `json:"msg,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &model.ParseError{What: "播放地址响应", Err: err}
	}

	if result.Code != 200 {
		logger.Warn("获取歌曲URL失败",
			logger.String("songId", id),
			logger.Int("code", result.Code),
			logger.String("msg", result.Msg))
		return nil, apiError(result.Code, result.Msg)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		// 区域限制或无版权，远端返回成功码但地址为空
		logger.Warn("歌曲URL为空，可能是版权限制", logger.String("songId", id))
		return nil, &model.CatalogError{Code: result.Code, Msg: "歌曲URL为空，可能是版权限制"}
	}

	return &model.PlaybackInfo{
		URL:      result.Data[0].URL,
		Duration: float64(result.Data[0].Time) / 1000.0,
	}, nil
}

// songsToTracks 目录歌曲结构转内部 Track
func songsToTracks(songs []apiSong) []model.Track {
	tracks := make([]model.Track, 0, len(songs))
	for _, s := range songs {
		artists := make([]model.Artist, 0, len(s.Artists))
		for _, a := range s.Artists {
			artists = append(artists, model.Artist{ID: a.ID, Name: a.Name})
		}
		tracks = append(tracks, model.Track{
			ID:       model.IDFromInt64(s.ID),
			Name:     s.Name,
			Artists:  artists,
			Duration: float64(s.Duration) / 1000.0,
		})
	}
	return tracks
}

type apiSong struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		PicURL string `json:"picUrl"`
	} `json:"album"`
	Duration int `json:"duration"` // 毫秒
}

// SearchTracks 搜索歌曲
func (c *HTTPClient) SearchTracks(ctx context.Context, keywords string, limit, offset int) ([]model.Track, int, error) {
	params := url.Values{}
	params.Set("keywords", keywords)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("offset", fmt.Sprintf("%d", offset))

	reqURL := fmt.Sprintf("%s/search?%s", c.BaseURL, params.Encode())
	logger.Debug("搜索歌曲", logger.String("keywords", keywords), logger.Int("limit", limit), logger.Int("offset", offset))

	req, err := c.createRequest(ctx, reqURL)
	if err != nil {
		return nil, 0, fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Result struct {
			Songs []apiSong `json:"songs"`
			Total int       `json:"songCount"`
		} `json:"result"`
		Code int    `json:"code"`
		Msg  string `json:"msg,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, &model.ParseError{What: "搜索响应", Err: err}
	}
	if result.Code != 200 {
		return nil, 0, apiError(result.Code, result.Msg)
	}

	logger.Debug("搜索完成", logger.Int("count", len(result.Result.Songs)))
	return songsToTracks(result.Result.Songs), result.Result.Total, nil
}

// GetTrack 获取歌曲详情
func (c *HTTPClient) GetTrack(ctx context.Context, id string) (*model.Track, error) {
	reqURL := fmt.Sprintf("%s/song/detail?ids=%s", c.BaseURL, url.QueryEscape(id))

	req, err := c.createRequest(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Songs []apiSong `json:"songs"`
		Code  int       `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &model.ParseError{What: "歌曲详情响应", Err: err}
	}
	if result.Code != 200 {
		return nil, apiError(result.Code, "")
	}
	if len(result.Songs) == 0 {
		return nil, &model.CatalogError{Code: result.Code, Msg: "未找到歌曲"}
	}
	tracks := songsToTracks(result.Songs[:1])
	return &tracks[0], nil
}

// GetCoverURL 获取专辑封面基础地址
func (c *HTTPClient) GetCoverURL(ctx context.Context, id string) (string, error) {
	reqURL := fmt.Sprintf("%s/song/detail?ids=%s", c.BaseURL, url.QueryEscape(id))

	req, err := c.createRequest(ctx, reqURL)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Songs []apiSong `json:"songs"`
		Code  int       `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &model.ParseError{What: "歌曲详情响应", Err: err}
	}
	if result.Code != 200 {
		return "", apiError(result.Code, "")
	}
	if len(result.Songs) == 0 || result.Songs[0].Album.PicURL == "" {
		return "", &model.CatalogError{Code: result.Code, Msg: "未找到专辑封面"}
	}
	return result.Songs[0].Album.PicURL, nil
}
