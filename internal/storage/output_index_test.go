package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestTxOutputIndex_Register(t *testing.T) {
	ctx := context.Background()
	stores, logs := newTestStores(t)
	x := stores.TxOutputIndex

	for _, index := range []int{1, 0, 1, 2} {
		_, err := x.Register(ctx, txA, index)
		require.NoError(t, err)
	}

	stored, err := stores.DB.LRange(ctx, TxOutputsKey(txA), 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "0", "2"}, stored)
	assert.Equal(t, 1, logs.FilterMessage("output index already registered").Len())

	hashes, err := x.GetTxOutputHashes(ctx, txA)
	require.NoError(t, err)
	assert.Equal(t, []string{txA + ":1", txA + ":0", txA + ":2"}, hashes)
}

func TestTxOutputIndex_UppercaseHashSharesList(t *testing.T) {
	ctx := context.Background()
	stores, _ := newTestStores(t)

	appended, err := stores.TxOutputIndex.Register(ctx, "ABCD", 0)
	require.NoError(t, err)
	assert.True(t, appended)
	appended, err = stores.TxOutputIndex.Register(ctx, "abcd", 0)
	require.NoError(t, err)
	assert.False(t, appended)
}

func TestTxOutputIndex_DeduplicatesOnRead(t *testing.T) {
	ctx := context.Background()
	stores, logs := newTestStores(t)

	// a writer in another process can slip a duplicate past the check
	_, err := stores.DB.RPush(ctx, TxOutputsKey(txA), "0", "1", "0", "1", "3")
	require.NoError(t, err)

	hashes, err := stores.TxOutputIndex.GetTxOutputHashes(ctx, txA)
	require.NoError(t, err)
	assert.Equal(t, []string{txA + ":0", txA + ":1", txA + ":3"}, hashes)

	warnings := logs.FilterMessage("duplicate output indexes in transaction output list").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Equal(t, int64(2), warnings[0].ContextMap()["duplicates"])
}

func TestTxOutputIndex_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	stores, _ := newTestStores(t)

	_, err := stores.DB.RPush(ctx, TxOutputsKey(txA), "x")
	require.NoError(t, err)

	_, err = stores.TxOutputIndex.GetTxOutputHashes(ctx, txA)
	assert.Error(t, err)
}

func TestTxOutputIndex_ConcurrentRegister(t *testing.T) {
	ctx := context.Background()
	stores, _ := newTestStores(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := stores.TxOutputIndex.Register(ctx, txA, 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := stores.DB.LRange(ctx, TxOutputsKey(txA), 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, stored)
}

func TestTxOutputIndex_Empty(t *testing.T) {
	stores, _ := newTestStores(t)

	hashes, err := stores.TxOutputIndex.GetTxOutputHashes(context.Background(), txA)
	require.NoError(t, err)
	assert.Empty(t, hashes)
}
