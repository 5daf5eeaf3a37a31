package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileName 用量文件在数据目录下的名字
const FileName = "data.json"

// Repository 负责 Store 的读写
// 写入先落到临时文件再 rename，避免进程被杀时留下半个文件
type Repository struct {
	log  *slog.Logger
	path string
	mu   sync.Mutex
}

func NewRepository(log *slog.Logger, path string) *Repository {
	return &Repository{log: log, path: path}
}

func (r *Repository) Path() string { return r.path }

// Load 文件不存在返回空表；文件损坏时记录日志并返回空表
func (r *Repository) Load() (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read usage file: %w", err)
	}

	store := NewStore()
	if err := json.Unmarshal(data, store); err != nil {
		r.log.Warn("usage: ignoring corrupt usage file", "path", r.path, "error", err)
		return NewStore(), nil
	}
	if store.ByDay == nil {
		store.ByDay = make(map[string]*Day)
	}
	for key, d := range store.ByDay {
		if d == nil {
			delete(store.ByDay, key)
		}
	}
	return store, nil
}

func (r *Repository) Save(store *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("failed to encode usage: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace usage file: %w", err)
	}
	return nil
}
