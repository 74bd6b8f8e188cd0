package tiercache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoadCachedValueSkipsLoader(t *testing.T) {
	mk := clock.NewMock()
	cc := newTestCache(t, mk, nil)
	ctx := context.Background()

	cc.Set("k", user{ID: "1"})
	v, err := cc.GetOrLoad(ctx, "k", func(context.Context) (user, error) {
		t.Fatalf("loader must not run on a hit")
		return user{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "1", v.ID)
}

func TestGetOrLoadStoresResult(t *testing.T) {
	mk := clock.NewMock()
	cc := newTestCache(t, mk, nil)
	ctx := context.Background()

	var loads atomic.Int64
	load := func(context.Context) (user, error) {
		loads.Add(1)
		return user{ID: "42"}, nil
	}

	v, err := cc.GetOrLoad(ctx, "k", load)
	require.NoError(t, err)
	assert.Equal(t, "42", v.ID)

	// second call is a plain cache hit
	v, err = cc.GetOrLoad(ctx, "k", load)
	require.NoError(t, err)
	assert.Equal(t, "42", v.ID)
	assert.Equal(t, int64(1), loads.Load())
}

func TestGetOrLoadSingleFlight(t *testing.T) {
	mk := clock.NewMock()
	cc := newTestCache(t, mk, nil)
	ctx := context.Background()

	var loads atomic.Int64
	load := func(context.Context) (user, error) {
		loads.Add(1)
		time.Sleep(50 * time.Millisecond) // keep the flight open for stragglers
		return user{ID: "shared"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := cc.GetOrLoad(ctx, "k", load)
			assert.NoError(t, err)
			assert.Equal(t, "shared", v.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), loads.Load(), "concurrent callers must share one load")
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	mk := clock.NewMock()
	cc := newTestCache(t, mk, nil)
	ctx := context.Background()

	sentinel := errors.New("backend down")
	var loads atomic.Int64

	_, err := cc.GetOrLoad(ctx, "k", func(context.Context) (user, error) {
		loads.Add(1)
		return user{}, sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// the failure is not cached; the next call loads again and can succeed
	v, err := cc.GetOrLoad(ctx, "k", func(context.Context) (user, error) {
		loads.Add(1)
		return user{ID: "ok"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v.ID)
	assert.Equal(t, int64(2), loads.Load())
}
