package storage

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPebbleDB_Hash(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	v, err := db.HGet(ctx, "1", "a")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, db.HSet(ctx, "1", "a", []byte("one")))
	require.NoError(t, db.HSet(ctx, "1", "b", []byte("two")))
	require.NoError(t, db.HSet(ctx, "10", "a", []byte("other")))

	ok, err := db.HSetNX(ctx, "1", "a", []byte("replaced"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.HSetNX(ctx, "1", "c", []byte("three"))
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := db.HGetAll(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"a": []byte("one"),
		"b": []byte("two"),
		"c": []byte("three"),
	}, all)

	keys, err := db.HKeys(ctx, "1")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	removed, err := db.HDel(ctx, "1", "a", "c", "missing")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	all, err = db.HGetAll(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": []byte("two")}, all)

	other, err := db.HGet(ctx, "10", "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("other"), other)
}

func TestPebbleDB_String(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	v, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, db.Set(ctx, "k", []byte("v1")))
	require.NoError(t, db.Set(ctx, "k", []byte("v2")))

	v, err = db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	// strings and hashes do not share a keyspace
	h, err := db.HGetAll(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestPebbleDB_List(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	empty, err := db.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	n, err := db.RPush(ctx, "l", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = db.RPush(ctx, "l", "c")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	tests := []struct {
		name        string
		start, stop int
		want        []string
	}{
		{name: "all", start: 0, stop: -1, want: []string{"a", "b", "c"}},
		{name: "head", start: 0, stop: 0, want: []string{"a"}},
		{name: "tail", start: -2, stop: -1, want: []string{"b", "c"}},
		{name: "stop past end", start: 1, stop: 100, want: []string{"b", "c"}},
		{name: "start before head", start: -100, stop: 1, want: []string{"a", "b"}},
		{name: "start past end", start: 5, stop: 10, want: []string{}},
		{name: "inverted", start: 2, stop: 1, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.LRange(ctx, "l", tt.start, tt.stop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPebbleDB_ConcurrentRPush(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.RPush(ctx, "l", "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := db.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Len(t, items, writers)
}

func TestPebbleDB_Lock(t *testing.T) {
	db := newTestDB(t)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := db.Lock("key")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestPebbleDB_CanceledContext(t *testing.T) {
	db := newTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.HGet(ctx, "1", "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, db.Set(ctx, "k", nil), context.Canceled)
	_, err = db.RPush(ctx, "l", "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("h:2"), prefixUpperBound([]byte("h:1")))
	assert.Equal(t, []byte("i"), prefixUpperBound([]byte{'h', 0xff}))
	assert.Nil(t, prefixUpperBound([]byte{0xff, 0xff}))
	assert.Nil(t, prefixUpperBound(nil))
}
