package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"Bt1QPlayer/model"
)

// MemoryStore 全内存实现，供测试和一次性运行使用
type MemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (s *MemoryStore) Abs(path string) string {
	return "mem://" + path
}

// Put 直接写入原始内容，用于在测试里预置媒体文件
func (s *MemoryStore) Put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
}

// Paths 返回当前存在的所有路径，用于断言清理行为
func (s *MemoryStore) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for p := range s.files {
		out = append(out, p)
	}
	return out
}

func (s *MemoryStore) ReadJSON(path string, v interface{}) (bool, error) {
	s.mu.Lock()
	data, ok := s.files[path]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, &model.ParseError{What: "存储文档 " + path, Err: err}
	}
	return true, nil
}

func (s *MemoryStore) WriteJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	s.Put(path, data)
	return nil
}

func (s *MemoryStore) Exists(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok
}

func (s *MemoryStore) Move(src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[src]
	if !ok {
		return &model.FileIOError{Op: "move", Path: src, Err: fmt.Errorf("not found")}
	}
	s.files[dst] = data
	delete(s.files, src)
	return nil
}

func (s *MemoryStore) Copy(src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[src]
	if !ok {
		return &model.FileIOError{Op: "copy", Path: src, Err: fmt.Errorf("not found")}
	}
	s.files[dst] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}
