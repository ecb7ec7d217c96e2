package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

// RosterCache 在 redis 中缓存独立计算（不考虑其他排班表）的排班结果
type RosterCache struct {
	rdb     *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

func NewRosterCache(cfg *config.Config, rdb *redis.Client) *RosterCache {
	return &RosterCache{
		rdb:     rdb,
		prefix:  cfg.Cache.Prefix,
		ttl:     time.Duration(cfg.Cache.TTL) * time.Second,
		timeout: time.Duration(cfg.Redis.OperationExpiration) * time.Second,
	}
}

func (c *RosterCache) redisKey(key string) string {
	return fmt.Sprintf("%s_assignments_%s", c.prefix, key)
}

// Get 第二个返回值表示是否命中
func (c *RosterCache) Get(key string) ([]domain.Assignment, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var assignments []domain.Assignment
	if err := json.Unmarshal(data, &assignments); err != nil {
		return nil, false, err
	}

	return assignments, true, nil
}

func (c *RosterCache) Set(key string, assignments []domain.Assignment) error {
	data, err := json.Marshal(assignments)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	return c.rdb.Set(ctx, c.redisKey(key), data, c.ttl).Err()
}
