package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastKey(t *testing.T) {
	base := ForecastKey{
		ProductID:       "p-1",
		TemplateID:      "Sports",
		HorizonDays:     90,
		CurrentStock:    25,
		MinStock:        10,
		Day:             time.Date(2024, 4, 1, 13, 0, 0, 0, time.UTC),
		RegistryVersion: 4,
	}

	key := base.String()
	assert.True(t, strings.HasPrefix(key, "forecast:product:p-1:"))

	same := base
	same.TemplateID = " Sports "
	same.Day = time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, key, same.String())

	for _, mutate := range []func(*ForecastKey){
		func(k *ForecastKey) { k.TemplateID = "sports" },
		func(k *ForecastKey) { k.HorizonDays = 30 },
		func(k *ForecastKey) { k.CurrentStock = 24 },
		func(k *ForecastKey) { k.MinStock = 0 },
		func(k *ForecastKey) { k.Day = k.Day.AddDate(0, 0, 1) },
		func(k *ForecastKey) { k.RegistryVersion++ },
	} {
		k := base
		mutate(&k)
		assert.NotEqual(t, key, k.String())
	}
}

func TestOverviewKeyIgnoresOrder(t *testing.T) {
	day := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	a := OverviewKey{ProductIDs: []string{"b", "a"}, Days: 30, Day: day}
	b := OverviewKey{ProductIDs: []string{"a", " b", ""}, Days: 30, Day: day}
	all := OverviewKey{Days: 30, Day: day}

	assert.Equal(t, a.String(), b.String())
	assert.NotEqual(t, a.String(), all.String())
}

func TestNoopCaches(t *testing.T) {
	ctx := context.Background()

	fc := NewForecastCache(nil, time.Minute)
	require.NoError(t, fc.SetForecast(ctx, ForecastKey{ProductID: "p"}, &domain.ProductForecast{}))
	pf, ok, err := fc.GetForecast(ctx, ForecastKey{ProductID: "p"})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, pf)
	assert.NoError(t, fc.InvalidateAll(ctx))

	oc := NewOverviewCache(nil, time.Minute)
	require.NoError(t, oc.SetOverview(ctx, OverviewKey{}, &domain.DemandOverview{}))
	_, ok, err = oc.GetOverview(ctx, OverviewKey{})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocker(nil)

	lock, err := l.Obtain(ctx, "job", time.Minute)
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "job", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	_, err = l.Obtain(ctx, "other", time.Minute)
	assert.NoError(t, err)

	require.NoError(t, lock.Release(ctx))
	_, err = l.Obtain(ctx, "job", time.Minute)
	assert.NoError(t, err)
}

func TestLocalLockerExpires(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	_, err := l.Obtain(ctx, "job", -time.Second)
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "job", time.Minute)
	assert.NoError(t, err)
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@localhost:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)

	assert.Equal(t, defaultCacheTTL, TTL(config.CacheConfig{}))
	assert.Equal(t, 30*time.Second, TTL(config.CacheConfig{ForecastTTLSeconds: 30}))
}
