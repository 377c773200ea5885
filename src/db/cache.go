package db

import (
	"fmt"
	"time"

	"finance-tracker/src/models"

	"github.com/dgraph-io/ristretto"
)

// UserTTL bounds how long a resolved user is served from memory.
const UserTTL = time.Minute

// UserCache keeps recently resolved users keyed by username.
type UserCache struct {
	cache *ristretto.Cache
}

func NewUserCache() (*UserCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     1000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &UserCache{cache: c}, nil
}

func userKey(username string) string {
	return "user:" + username
}

// Get returns a copy of the cached user so callers cannot mutate the entry.
func (c *UserCache) Get(username string) (*models.User, bool) {
	v, ok := c.cache.Get(userKey(username))
	if !ok {
		return nil, false
	}
	user, ok := v.(models.User)
	if !ok {
		return nil, false
	}
	return &user, true
}

func (c *UserCache) Set(user *models.User) {
	c.cache.SetWithTTL(userKey(user.Username), *user, 1, UserTTL)
}

func (c *UserCache) Del(username string) {
	c.cache.Del(userKey(username))
}

// Wait blocks until buffered writes are applied.
func (c *UserCache) Wait() {
	c.cache.Wait()
}

func (c *UserCache) Close() {
	c.cache.Close()
}
