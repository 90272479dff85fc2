package model

import (
	"errors"
	"fmt"
)

// 播放器内部统一的错误分类。目录服务返回码在 catalog 包映射到这里，
// 上层只依赖这些类型做分支。
var (
	// ErrNotFound 请求的歌曲不在队列中且调用方未提供歌曲信息
	ErrNotFound = errors.New("歌曲不存在")

	// ErrEmptyQueue 播放列表为空，属于用户可见提示而非故障
	ErrEmptyQueue = errors.New("播放列表为空")

	// ErrAuthRequired 凭证缺失或过期，需要重新登录
	ErrAuthRequired = errors.New("需要登录后才能访问")

	// ErrRiskBlocked 触发远端风控/限流，调用方不应激进重试
	ErrRiskBlocked = errors.New("请求被风控拦截，请稍后再试")

	// ErrPlaybackTimeout 设备在限定时间内未上报开始播放
	ErrPlaybackTimeout = errors.New("播放超时")
)

// CatalogError 目录服务返回的非成功业务码
type CatalogError struct {
	Code int
	Msg  string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("API返回错误: %s (code: %d)", e.Msg, e.Code)
}

// DeviceError 音频设备驱动上报的故障
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("设备错误 (%s): %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// FileIOError 本地文件读写/移动失败
type FileIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("文件操作失败 (%s %s): %v", e.Op, e.Path, e.Err)
}

func (e *FileIOError) Unwrap() error { return e.Err }

// ParseError JSON 或歌词载荷格式异常
// 歌词规范化路径上永远不外抛，只用于目录响应解码
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("解析%s失败: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
