package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix = "forecast:product"
	scanBatchSize     = 100
)

// ForecastKey identifies a forecast run. Two runs with equal keys produce
// identical results, so the key covers every input the engine reads.
type ForecastKey struct {
	ProductID       string
	TemplateID      string
	HorizonDays     int
	CurrentStock    float64
	MinStock        float64
	Day             time.Time
	RegistryVersion uint64
}

func (k ForecastKey) String() string {
	parts := []string{
		"template=" + strings.TrimSpace(k.TemplateID),
		fmt.Sprintf("horizon=%d", k.HorizonDays),
		fmt.Sprintf("stock=%g", k.CurrentStock),
		fmt.Sprintf("min=%g", k.MinStock),
		"day=" + k.Day.Format("2006-01-02"),
		fmt.Sprintf("version=%d", k.RegistryVersion),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s:%s", forecastKeyPrefix, k.ProductID, hex.EncodeToString(sum[:]))
}

type ForecastCache interface {
	GetForecast(ctx context.Context, key ForecastKey) (*domain.ProductForecast, bool, error)
	SetForecast(ctx context.Context, key ForecastKey, pf *domain.ProductForecast) error
	InvalidateProduct(ctx context.Context, productID string) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

// NewForecastCache returns a redis backed cache, or a no-op cache when client is nil.
func NewForecastCache(client *redis.Client, ttl time.Duration) ForecastCache {
	if client == nil {
		return &noopForecastCache{}
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisForecastCache{client: client, ttl: ttl}
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetForecast(ctx context.Context, key ForecastKey) (*domain.ProductForecast, bool, error) {
	payload, err := c.client.Get(ctx, key.String()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get failed")
	}

	var pf domain.ProductForecast
	if err := json.Unmarshal(payload, &pf); err != nil {
		return nil, false, errors.Wrap(err, "decode forecast cache")
	}

	return &pf, true, nil
}

func (c *redisForecastCache) SetForecast(ctx context.Context, key ForecastKey, pf *domain.ProductForecast) error {
	payload, err := json.Marshal(pf)
	if err != nil {
		return errors.Wrap(err, "encode forecast cache")
	}

	if err := c.client.Set(ctx, key.String(), payload, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set failed")
	}
	return nil
}

// InvalidateProduct drops the cached forecasts of one product. Overview keys
// are hashed over the product set, so every cached overview goes with them.
func (c *redisForecastCache) InvalidateProduct(ctx context.Context, productID string) error {
	if err := deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix+":"+productID+":", scanBatchSize); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, overviewKeyPrefix, scanBatchSize)
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, scanBatchSize); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, overviewKeyPrefix, scanBatchSize)
}

func (n *noopForecastCache) GetForecast(ctx context.Context, key ForecastKey) (*domain.ProductForecast, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetForecast(ctx context.Context, key ForecastKey, pf *domain.ProductForecast) error {
	return nil
}

func (n *noopForecastCache) InvalidateProduct(ctx context.Context, productID string) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}
