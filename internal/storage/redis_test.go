package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/series"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/storage"
)

var stringCodec = storage.Codec[string]{
	Encode: func(s string) ([]byte, error) { return []byte(s), nil },
	Decode: func(b []byte) (string, error) { return string(b), nil },
}

var tableCodec = storage.Codec[*data.Table]{Encode: data.EncodeCSV, Decode: data.DecodeCSV}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client, err := storage.NewRedisClient(context.Background(), storage.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNewRedisClientUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := storage.NewRedisClient(ctx, storage.RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
}

func TestRedisGetOrCompute(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := storage.NewRedis(client, "test:", time.Minute, stringCodec)

	calls := 0
	v, err := c.GetOrCompute(ctx, "a", counter(&calls, "one"))
	require.NoError(t, err)
	require.Equal(t, "one", v)
	require.True(t, mr.Exists("test:a"))

	v, err = c.GetOrCompute(ctx, "a", counter(&calls, "two"))
	require.NoError(t, err)
	require.Equal(t, "one", v)
	require.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	v, err = c.GetOrCompute(ctx, "a", counter(&calls, "three"))
	require.NoError(t, err)
	require.Equal(t, "three", v)
	require.Equal(t, 2, calls)
}

func TestRedisErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := storage.NewRedis(client, "test:", time.Minute, stringCodec)

	boom := errors.New("boom")
	_, err := c.GetOrCompute(ctx, "a", func(context.Context) (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("test:a"))
}

func TestRedisInvalidateAndPurge(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := storage.NewRedis(client, "test:", time.Minute, stringCodec)
	require.NoError(t, mr.Set("other", "kept"))

	calls := 0
	for _, key := range []string{"a", "b", "c"} {
		_, err := c.GetOrCompute(ctx, key, counter(&calls, key))
		require.NoError(t, err)
	}

	require.NoError(t, c.Invalidate(ctx, "a"))
	require.False(t, mr.Exists("test:a"))
	require.True(t, mr.Exists("test:b"))

	require.NoError(t, c.Purge(ctx))
	require.Equal(t, []string{"other"}, mr.Keys())
}

func TestRedisTableCodec(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)
	c := storage.NewRedis(client, "readings:", time.Minute, tableCodec)

	end := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	generate := func(context.Context) (*data.Table, error) {
		return series.Generate(series.Options{Days: 2, Sensors: 2, Seed: 42, End: end})
	}

	original, err := c.GetOrCompute(ctx, "k", generate)
	require.NoError(t, err)

	cached, err := c.GetOrCompute(ctx, "k", func(context.Context) (*data.Table, error) {
		t.Fatal("table should come from redis")
		return nil, nil
	})
	require.NoError(t, err)
	require.NotSame(t, original, cached)
	require.Equal(t, original.Columns, cached.Columns)
	require.Equal(t, original.Sensors, cached.Sensors)

	want, err := series.DailyMean(original, "vib_s2")
	require.NoError(t, err)
	got, err := series.DailyMean(cached, "vib_s2")
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].Label(), got[i].Label())
		require.Equal(t, want[i].Mean, got[i].Mean)
	}
}

func TestRedisRecomputesUndecodableEntries(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := storage.NewRedis(client, "readings:", time.Minute, tableCodec)

	for name, stored := range map[string]string{
		"garbage":     "not a csv",
		"header only": "timestamp,temp_s1,vib_s1,cons_s1\n",
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, mr.Set("readings:k", stored))

			table, err := c.GetOrCompute(ctx, "k", func(context.Context) (*data.Table, error) {
				return series.Generate(series.Options{Days: 1, Sensors: 1, Seed: 1, End: time.Now()})
			})
			require.NoError(t, err)
			require.Equal(t, 24, table.Len())

			b, err := mr.Get("readings:k")
			require.NoError(t, err)
			require.NotEqual(t, stored, b)
		})
	}
}
