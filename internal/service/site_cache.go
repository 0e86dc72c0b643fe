package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/batala/site-server-go/internal/model"
)

const siteCacheKey = "site:content"

// SiteCache holds the decoded public site document. Failures are never
// fatal: a broken cache only costs a database read.
type SiteCache interface {
	Get(ctx context.Context) (*model.Site, bool)
	Set(ctx context.Context, site *model.Site)
	Invalidate(ctx context.Context)
}

type RedisSiteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSiteCache(client *redis.Client, ttl time.Duration) *RedisSiteCache {
	return &RedisSiteCache{client: client, ttl: ttl}
}

func (c *RedisSiteCache) Get(ctx context.Context) (*model.Site, bool) {
	data, err := c.client.Get(ctx, siteCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("site cache read failed")
		}
		return nil, false
	}

	var site model.Site
	if err := json.Unmarshal(data, &site); err != nil {
		log.Warn().Err(err).Msg("site cache entry is corrupt, dropping it")
		c.Invalidate(ctx)
		return nil, false
	}
	return &site, true
}

func (c *RedisSiteCache) Set(ctx context.Context, site *model.Site) {
	data, err := json.Marshal(site)
	if err != nil {
		log.Warn().Err(err).Msg("site cache encode failed")
		return
	}
	if err := c.client.Set(ctx, siteCacheKey, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("site cache write failed")
	}
}

func (c *RedisSiteCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, siteCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("site cache invalidation failed")
	}
}

// NoopSiteCache is used when Redis is not configured.
type NoopSiteCache struct{}

func (NoopSiteCache) Get(context.Context) (*model.Site, bool) { return nil, false }
func (NoopSiteCache) Set(context.Context, *model.Site)        {}
func (NoopSiteCache) Invalidate(context.Context)              {}
