package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"Bt1QPlayer/model"
)

// RedisStore 将小型 JSON 文档放进 Redis，媒体文件仍落本地磁盘。
// 顶层文档（playlist.json 等不含子目录的键）走 Redis，其余路径
// 全部委托给内嵌的 FileStore。
type RedisStore struct {
	*FileStore
	client *redis.Client
	prefix string
}

// NewRedisStore 连接 Redis 并创建存储
func NewRedisStore(addr, password string, db int, fileRoot string) (*RedisStore, error) {
	fs, err := NewFileStore(fileRoot)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{FileStore: fs, client: client, prefix: "player:"}, nil
}

// Close 关闭 Redis 连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// isDoc 顶层 JSON 文档进 Redis，带子目录的媒体路径进文件系统
func isDoc(path string) bool {
	return !strings.Contains(path, "/")
}

func (s *RedisStore) key(path string) string {
	return s.prefix + path
}

func (s *RedisStore) ReadJSON(path string, v interface{}) (bool, error) {
	if !isDoc(path) {
		return s.FileStore.ReadJSON(path, v)
	}
	ctx := context.Background()
	data, err := s.client.Get(ctx, s.key(path)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, &model.ParseError{What: "存储文档 " + path, Err: err}
	}
	return true, nil
}

func (s *RedisStore) WriteJSON(path string, v interface{}) error {
	if !isDoc(path) {
		return s.FileStore.WriteJSON(path, v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	ctx := context.Background()
	if err := s.client.Set(ctx, s.key(path), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

func (s *RedisStore) Exists(path string) bool {
	if !isDoc(path) {
		return s.FileStore.Exists(path)
	}
	n, err := s.client.Exists(context.Background(), s.key(path)).Result()
	return err == nil && n > 0
}

func (s *RedisStore) Move(src, dst string) error {
	if !isDoc(src) {
		return s.FileStore.Move(src, dst)
	}
	err := s.client.Rename(context.Background(), s.key(src), s.key(dst)).Err()
	if err != nil {
		return fmt.Errorf("failed to rename %s: %w", src, err)
	}
	return nil
}

func (s *RedisStore) Copy(src, dst string) error {
	if !isDoc(src) {
		return s.FileStore.Copy(src, dst)
	}
	ctx := context.Background()
	data, err := s.client.Get(ctx, s.key(src)).Bytes()
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", src, err)
	}
	if err := s.client.Set(ctx, s.key(dst), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", dst, err)
	}
	return nil
}

func (s *RedisStore) Delete(path string) error {
	if !isDoc(path) {
		return s.FileStore.Delete(path)
	}
	// Del 对不存在的键也返回成功，天然幂等
	if err := s.client.Del(context.Background(), s.key(path)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}
