package context

import (
	"context"
	"sync"
)

const (
	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
	UsernameKey  = "username"
)

// Current holds per-request values that outlive a single layer, such as the
// request id and the authenticated user.
type Current struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

func NewCurrent() *Current {
	return &Current{
		data: make(map[string]interface{}),
	}
}

func (c *Current) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *Current) Get(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

func (c *Current) GetString(key string) (string, bool) {
	if str, ok := c.Get(key).(string); ok {
		return str, true
	}
	return "", false
}

func (c *Current) GetInt(key string) (int, bool) {
	if i, ok := c.Get(key).(int); ok {
		return i, true
	}
	return 0, false
}

func (c *Current) Exists(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.data[key]
	return exists
}

func (c *Current) All() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]interface{}, len(c.data))
	for k, v := range c.data {
		result[k] = v
	}
	return result
}

type contextKey string

const currentKey contextKey = "current"

func WithCurrent(ctx context.Context, current *Current) context.Context {
	return context.WithValue(ctx, currentKey, current)
}

func FromContext(ctx context.Context) (*Current, bool) {
	current, ok := ctx.Value(currentKey).(*Current)
	return current, ok
}

// GetCurrent returns the Current stored in ctx, or an empty one.
func GetCurrent(ctx context.Context) *Current {
	if current, ok := FromContext(ctx); ok {
		return current
	}

	return NewCurrent()
}

func RequestID(ctx context.Context) string {
	id, _ := GetCurrent(ctx).GetString(RequestIDKey)
	return id
}

func UserID(ctx context.Context) (int, bool) {
	return GetCurrent(ctx).GetInt(UserIDKey)
}
