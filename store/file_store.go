package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"Bt1QPlayer/model"
)

// FileStore 基于本地文件系统的存储，根目录下按 layout.go 组织
type FileStore struct {
	root string
}

// NewFileStore 创建文件存储并确保根目录存在
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, &model.FileIOError{Op: "mkdir", Path: root, Err: err}
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Abs(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(path))
}

func (s *FileStore) ReadJSON(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(s.Abs(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &model.FileIOError{Op: "read", Path: path, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, &model.ParseError{What: "存储文档 " + path, Err: err}
	}
	return true, nil
}

// WriteJSON 先写临时文件再重命名，读者永远看不到半截文档
func (s *FileStore) WriteJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	abs := s.Abs(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return &model.FileIOError{Op: "mkdir", Path: path, Err: err}
	}
	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &model.FileIOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp, abs); err != nil {
		os.Remove(tmp)
		return &model.FileIOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func (s *FileStore) Exists(path string) bool {
	info, err := os.Stat(s.Abs(path))
	return err == nil && !info.IsDir()
}

func (s *FileStore) Move(src, dst string) error {
	absDst := s.Abs(dst)
	if err := os.MkdirAll(filepath.Dir(absDst), 0755); err != nil {
		return &model.FileIOError{Op: "mkdir", Path: dst, Err: err}
	}
	if err := os.Rename(s.Abs(src), absDst); err == nil {
		return nil
	}
	// 跨设备重命名会失败，退化为复制后删除
	if err := s.Copy(src, dst); err != nil {
		return err
	}
	return s.Delete(src)
}

func (s *FileStore) Copy(src, dst string) error {
	in, err := os.Open(s.Abs(src))
	if err != nil {
		return &model.FileIOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	absDst := s.Abs(dst)
	if err := os.MkdirAll(filepath.Dir(absDst), 0755); err != nil {
		return &model.FileIOError{Op: "mkdir", Path: dst, Err: err}
	}
	out, err := os.Create(absDst)
	if err != nil {
		return &model.FileIOError{Op: "create", Path: dst, Err: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return &model.FileIOError{Op: "copy", Path: dst, Err: err}
	}
	return nil
}

func (s *FileStore) Delete(path string) error {
	err := os.Remove(s.Abs(path))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &model.FileIOError{Op: "delete", Path: path, Err: err}
	}
	return nil
}
