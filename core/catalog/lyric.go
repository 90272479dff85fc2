package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"Bt1QPlayer/logger"
	"Bt1QPlayer/model"
)

// GetLyric 获取歌词
// 无歌词、未收录都是正常结果，通过载荷上的标记表达而不是报错
func (c *HTTPClient) GetLyric(ctx context.Context, id string) (*model.RawLyric, error) {
	reqURL := fmt.Sprintf("%s/lyric?id=%s", c.BaseURL, id)
	logger.Debug("获取歌词", logger.String("songId", id))

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
		NoLyric     bool `json:"nolyric"`
		Uncollected bool `json:"uncollected"`
		Lrc         struct {
			Version int    `json:"version"`
			Lyric   string `json:"lyric"`
		} `json:"lrc"`
		Tlyric struct {
			Version int    `json:"version"`
			Lyric   string `json:"lyric"`
		} `json:"tlyric"`
		Romalrc struct {
			Version int    `json:"version"`
			Lyric   string `json:"lyric"`
		} `json:"romalrc"`
		LyricUser struct {
			UserID   int64  `json:"userid"`
			Nickname string `json:"nickname"`
		} `json:"lyricUser"`
		TransUser struct {
			UserID   int64  `json:"userid"`
			Nickname string `json:"nickname"`
		} `json:"transUser"`
		Code int    `json:"code"`
		Msg  string `json:"msg,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &model.ParseError{What: "歌词响应", Err: err}
	}
	if result.Code != 200 {
		return nil, apiError(result.Code, result.Msg)
	}

	raw := &model.RawLyric{
		SongID:       id,
		NoLyric:      result.NoLyric,
		Uncollected:  result.Uncollected,
		Original:     result.Lrc.Lyric,
		Translation:  result.Tlyric.Lyric,
		Romanization: result.Romalrc.Lyric,
		VersionInfo: map[string]int{
			"lrc":     result.Lrc.Version,
			"tlyric":  result.Tlyric.Version,
			"romalrc": result.Romalrc.Version,
		},
	}
	if result.LyricUser.Nickname != "" {
		raw.Contributors = append(raw.Contributors, model.LyricContributor{
			UserID:   result.LyricUser.UserID,
			Nickname: result.LyricUser.Nickname,
			Role:     "original",
		})
	}
	if result.TransUser.Nickname != "" {
		raw.Contributors = append(raw.Contributors, model.LyricContributor{
			UserID:   result.TransUser.UserID,
			Nickname: result.TransUser.Nickname,
			Role:     "translation",
		})
	}

	logger.Debug("成功获取歌词", logger.String("songId", id), logger.Int("length", len(raw.Original)))
	return raw, nil
}
