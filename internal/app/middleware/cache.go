package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	applog "github.com/axxaxinx/user-management-final-123/pkg/logger"
)

// CacheKeyPrefix 所有响应缓存键的前缀
const CacheKeyPrefix = "cache:"

// CacheStore 缓存存储, 内存或Redis
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// 缓存条目
type cacheEntry struct {
	Content    []byte
	Expiration time.Time
}

// MemoryStore 进程内缓存
type MemoryStore struct {
	sync.RWMutex
	items     map[string]cacheEntry
	lastClean time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]cacheEntry), lastClean: time.Now()}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.RLock()
	entry, found := m.items[key]
	m.RUnlock()
	if !found || !entry.Expiration.After(time.Now()) {
		return nil, false
	}
	return entry.Content, true
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := time.Now()
	m.Lock()
	defer m.Unlock()

	m.items[key] = cacheEntry{Content: value, Expiration: now.Add(ttl)}

	// 定期清理过期缓存
	if now.Sub(m.lastClean) > 5*time.Minute {
		for k, entry := range m.items {
			if entry.Expiration.Before(now) {
				delete(m.items, k)
			}
		}
		m.lastClean = now
	}
	return nil
}

func (m *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	m.Lock()
	defer m.Unlock()
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

// Len 当前缓存条目数
func (m *MemoryStore) Len() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.items)
}

// RedisStore 使用Redis作为共享缓存, 多实例部署时失效可以同步
type RedisStore struct {
	redis services.InterfaceRedisService
}

func NewRedisStore(redis services.InterfaceRedisService) *RedisStore {
	return &RedisStore{redis: redis}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	content, err := r.redis.GetBytes(ctx, key)
	if err != nil {
		return nil, false
	}
	return content, true
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.redis.SetBytes(ctx, key, value, ttl)
}

func (r *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	return r.redis.DeleteByPrefix(ctx, prefix)
}

// ResponseCache 缓存GET请求的成功响应
type ResponseCache struct {
	store CacheStore
	ttl   time.Duration
}

func NewResponseCache(store CacheStore, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ResponseCache{store: store, ttl: ttl}
}

// CacheKey 由路径和排序后的查询参数生成缓存键
func CacheKey(c *gin.Context) string {
	queryParams := c.Request.URL.Query()
	queryKeys := make([]string, 0, len(queryParams))
	for key := range queryParams {
		queryKeys = append(queryKeys, key)
	}
	sort.Strings(queryKeys)

	var b strings.Builder
	b.WriteString(CacheKeyPrefix)
	b.WriteString(c.Request.URL.Path)
	b.WriteString("?")
	for _, key := range queryKeys {
		values := queryParams[key]
		sort.Strings(values)
		for _, value := range values {
			b.WriteString(key + "=" + value + "&")
		}
	}
	return b.String()
}

// Middleware 返回缓存中间件
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := CacheKey(c)
		if content, found := rc.store.Get(c.Request.Context(), key); found {
			// 缓存命中，直接返回缓存的响应
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", content)
			c.Abort()
			return
		}

		// 缓存未命中，捕获响应
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := rc.store.Set(c.Request.Context(), key, writer.body.Bytes(), rc.ttl); err != nil {
				applog.Warning("cache set %s: %v", key, err)
			}
		}
	}
}

// Purge 清除以 path 开头的缓存
func (rc *ResponseCache) Purge(ctx context.Context, path string) {
	if err := rc.store.DeleteByPrefix(ctx, CacheKeyPrefix+path); err != nil {
		applog.Warning("cache purge %s: %v", path, err)
	}
}

// PurgeOnSuccess 写操作成功后清除相关缓存
func (rc *ResponseCache) PurgeOnSuccess(paths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusBadRequest {
			for _, path := range paths {
				rc.Purge(c.Request.Context(), path)
			}
		}
	}
}

// 自定义响应写入器，用于捕获响应内容
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 重写Write方法，同时写入原始响应和缓冲区
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// WriteString 重写WriteString方法，同时写入原始响应和缓冲区
func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
