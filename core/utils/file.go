package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"Bt1QPlayer/model"
)

var downloadClient = &http.Client{Timeout: 3 * time.Minute}

// DownloadFile 下载文件到指定路径，目标目录不存在时自动创建
func DownloadFile(url, path string) error {
	resp, err := downloadClient.Get(url)
	if err != nil {
		return fmt.Errorf("下载文件失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("下载文件失败，状态码: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &model.FileIOError{Op: "mkdir", Path: path, Err: err}
	}
	out, err := os.Create(path)
	if err != nil {
		return &model.FileIOError{Op: "create", Path: path, Err: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return &model.FileIOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
