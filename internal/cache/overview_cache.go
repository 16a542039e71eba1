package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const overviewKeyPrefix = "forecast:overview"

// OverviewKey identifies a demand overview over a product set.
type OverviewKey struct {
	ProductIDs      []string
	Days            int
	Day             time.Time
	RegistryVersion uint64
}

func (k OverviewKey) String() string {
	ids := make([]string, 0, len(k.ProductIDs))
	for _, id := range k.ProductIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	scope := "all"
	if len(ids) > 0 {
		scope = strings.Join(ids, ",")
	}
	raw := fmt.Sprintf("ids=%s|days=%d|day=%s|version=%d",
		scope, k.Days, k.Day.Format("2006-01-02"), k.RegistryVersion)
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", overviewKeyPrefix, hex.EncodeToString(sum[:]))
}

type OverviewCache interface {
	GetOverview(ctx context.Context, key OverviewKey) (*domain.DemandOverview, bool, error)
	SetOverview(ctx context.Context, key OverviewKey, overview *domain.DemandOverview) error
}

type redisOverviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopOverviewCache struct{}

func NewOverviewCache(client *redis.Client, ttl time.Duration) OverviewCache {
	if client == nil {
		return &noopOverviewCache{}
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisOverviewCache{client: client, ttl: ttl}
}

func NewNoopOverviewCache() OverviewCache {
	return &noopOverviewCache{}
}

func (c *redisOverviewCache) GetOverview(ctx context.Context, key OverviewKey) (*domain.DemandOverview, bool, error) {
	payload, err := c.client.Get(ctx, key.String()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get failed")
	}

	var overview domain.DemandOverview
	if err := json.Unmarshal(payload, &overview); err != nil {
		return nil, false, errors.Wrap(err, "decode overview cache")
	}

	return &overview, true, nil
}

func (c *redisOverviewCache) SetOverview(ctx context.Context, key OverviewKey, overview *domain.DemandOverview) error {
	payload, err := json.Marshal(overview)
	if err != nil {
		return errors.Wrap(err, "encode overview cache")
	}

	if err := c.client.Set(ctx, key.String(), payload, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set failed")
	}
	return nil
}

func (n *noopOverviewCache) GetOverview(ctx context.Context, key OverviewKey) (*domain.DemandOverview, bool, error) {
	return nil, false, nil
}

func (n *noopOverviewCache) SetOverview(ctx context.Context, key OverviewKey, overview *domain.DemandOverview) error {
	return nil
}
