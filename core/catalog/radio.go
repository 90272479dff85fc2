package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"Bt1QPlayer/logger"
	"Bt1QPlayer/model"
)

// GetPersonalRadioBatch 获取一批私人电台推荐歌曲
// 返回空批次不算错误，由调用方决定如何处理
func (c *HTTPClient) GetPersonalRadioBatch(ctx context.Context) ([]model.Track, error) {
	reqURL := fmt.Sprintf("%s/personal_fm", c.BaseURL)
	logger.Debug("获取私人电台推荐")

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
			ID      int64  `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"artists"`
			Duration int `json:"duration"` // 毫秒
		} `json:"data"`
		Code int    `json:"code"`
		Msg  string `json:"msg,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &model.ParseError{What: "电台响应", Err: err}
	}
	if result.Code != 200 {
		return nil, apiError(result.Code, result.Msg)
	}

	tracks := make([]model.Track, 0, len(result.Data))
	for _, s := range result.Data {
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

	logger.Info("获取电台推荐完成", logger.Int("count", len(tracks)))
	return tracks, nil
}
