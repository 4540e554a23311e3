package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thanhnp/ord-store/internal/models"
)

var (
	txA = strings.Repeat("a", 64)
	txB = strings.Repeat("b", 64)
	txC = strings.Repeat("c", 64)
)

func newTestDB(t *testing.T) *PebbleDB {
	t.Helper()

	db, err := NewMemPebbleDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestStores(t *testing.T) (*Stores, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	return NewStores(newTestDB(t), zap.New(core), nil), logs
}

func testTx(hash string, block int64, index int, inputs ...models.Input) *models.Transaction {
	return &models.Transaction{
		Hash:        hash,
		BlockNumber: block,
		Index:       index,
		Timestamp:   time.Unix(1700000000+int64(index), 0).UTC(),
		Inputs:      inputs,
	}
}
