package storage

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// TxOutputIndex keeps, per transaction, the list of output indexes that have
// been written for it
type TxOutputIndex struct {
	db      KV
	logger  *zap.Logger
	metrics Metrics
}

// NewTxOutputIndex creates a new TxOutputIndex
func NewTxOutputIndex(db KV, logger *zap.Logger, metrics Metrics) *TxOutputIndex {
	return &TxOutputIndex{
		db:      db,
		logger:  logger.Named("txOutputIndex"),
		metrics: metricsOrNop(metrics),
	}
}

// Register appends index to the list of txHash unless it is already there
// and reports whether it was appended
func (x *TxOutputIndex) Register(ctx context.Context, txHash string, index int) (appended bool, err error) {
	start := time.Now()
	defer func() {
		x.metrics.Observe("register_output_index", err, start)
	}()

	key := TxOutputsKey(txHash)
	unlock := x.db.Lock(key)
	defer unlock()

	existing, err := x.db.LRange(ctx, key, 0, -1)
	if err != nil {
		return false, fmt.Errorf("failed to read output index of %s: %w", txHash, err)
	}

	value := strconv.Itoa(index)
	if slices.Contains(existing, value) {
		x.logger.Debug("output index already registered",
			zap.String("tx_hash", txHash),
			zap.Int("index", index),
		)
		return false, nil
	}

	if _, err := x.db.RPush(ctx, key, value); err != nil {
		return false, fmt.Errorf("failed to append output index of %s: %w", txHash, err)
	}
	return true, nil
}

// GetTxOutputHashes returns the composite hashes of the outputs registered
// for txHash, without duplicates, in first-registered order
func (x *TxOutputIndex) GetTxOutputHashes(ctx context.Context, txHash string) (hashes []string, err error) {
	start := time.Now()
	defer func() {
		x.metrics.Observe("get_tx_output_hashes", err, start)
	}()

	items, err := x.db.LRange(ctx, TxOutputsKey(txHash), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read output index of %s: %w", txHash, err)
	}

	seen := make(map[int]struct{}, len(items))
	hashes = make([]string, 0, len(items))
	for _, item := range items {
		index, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid output index %q for %s: %w", item, txHash, err)
		}
		if _, ok := seen[index]; ok {
			continue
		}
		seen[index] = struct{}{}
		hashes = append(hashes, OutputHash(txHash, index))
	}

	if dups := len(items) - len(hashes); dups > 0 {
		x.logger.Warn("duplicate output indexes in transaction output list",
			zap.String("tx_hash", txHash),
			zap.Int("duplicates", dups),
		)
	}
	return hashes, nil
}
