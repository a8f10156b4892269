package factory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	OptionsKeyPrefix  = "factory:options:"
	defaultOptionsTTL = time.Hour
)

// optionsCache holds the active factories of a tenant for dropdowns. Loads
// for the same tenant are collapsed with singleflight. A nil client turns
// it into a pass-through.
type optionsCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	logger *zap.Logger
}

func newOptionsCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *optionsCache {
	if ttl <= 0 {
		ttl = defaultOptionsTTL
	}
	return &optionsCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *optionsCache) get(ctx context.Context, tenantID string, load func(ctx context.Context) ([]OptionResponse, error)) ([]OptionResponse, error) {
	key := OptionsKeyPrefix + tenantID

	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, key).Result(); err == nil {
			var opts []OptionResponse
			if json.Unmarshal([]byte(cached), &opts) == nil {
				return opts, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("factory options cache read failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		opts, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if c.rdb != nil {
			if data, err := json.Marshal(opts); err == nil {
				if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
					c.logger.Warn("factory options cache write failed", zap.String("tenant_id", tenantID), zap.Error(err))
				}
			}
		}
		return opts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]OptionResponse), nil
}

func (c *optionsCache) invalidate(ctx context.Context, tenantID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, OptionsKeyPrefix+tenantID).Err(); err != nil {
		c.logger.Warn("factory options cache invalidate failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}
}
