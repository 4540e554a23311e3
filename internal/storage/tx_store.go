package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/thanhnp/ord-store/internal/models"
)

// TxStore handles transaction storage operations. Transactions of a block
// live in one hash keyed by the block number, one field per transaction hash.
type TxStore struct {
	db      KV
	logger  *zap.Logger
	metrics Metrics
}

// NewTxStore creates a new TxStore
func NewTxStore(db KV, logger *zap.Logger, metrics Metrics) *TxStore {
	return &TxStore{
		db:      db,
		logger:  logger.Named("txStore"),
		metrics: metricsOrNop(metrics),
	}
}

// storedInput is an input without the linkage recoverable from its transaction
type storedInput struct {
	Index      int    `json:"index"`
	OutputHash string `json:"outputHash,omitempty"`
}

func encodeTransaction(tx *models.Transaction) ([]byte, error) {
	inputs := make([]storedInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = storedInput{Index: in.Index, OutputHash: in.OutputHash}
	}

	r := make(record)
	if err := r.put(FieldIndex, tx.Index); err != nil {
		return nil, err
	}
	if err := r.put(FieldTimestamp, tx.Timestamp.Unix()); err != nil {
		return nil, err
	}
	if err := r.put(FieldInputs, inputs); err != nil {
		return nil, err
	}
	return r.encode()
}

func decodeTransaction(hash string, blockNumber int64, data []byte) (*models.Transaction, error) {
	r, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{Hash: hash, BlockNumber: blockNumber}
	if _, err := r.get(FieldIndex, &tx.Index); err != nil {
		return nil, err
	}
	var ts int64
	if ok, err := r.get(FieldTimestamp, &ts); err != nil {
		return nil, err
	} else if ok {
		tx.Timestamp = time.Unix(ts, 0).UTC()
	}
	var inputs []storedInput
	if _, err := r.get(FieldInputs, &inputs); err != nil {
		return nil, err
	}
	if _, err := r.get(FieldOutputsFetched, &tx.OutputsFetched); err != nil {
		return nil, err
	}

	tx.Inputs = make([]models.Input, len(inputs))
	for i, in := range inputs {
		tx.Inputs[i] = models.Input{
			TransactionHash: hash,
			BlockNumber:     blockNumber,
			Index:           in.Index,
			OutputHash:      in.OutputHash,
		}
	}
	return tx, nil
}

// recordLock names the single-writer section of one transaction record
func recordLock(blockNumber int64, hash string) string {
	return "txrec:" + TransactionsKey(blockNumber) + ":" + hash
}

// UpsertTransactions creates a record for every transaction that does not
// have one yet. Existing records, fetched flag included, are left untouched.
func (s *TxStore) UpsertTransactions(ctx context.Context, txs []*models.Transaction) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("upsert_transactions", err, start)
	}()

	created := 0
	for _, tx := range txs {
		data, err := encodeTransaction(tx)
		if err != nil {
			return fmt.Errorf("failed to encode transaction %s: %w", tx.Hash, err)
		}

		unlock := s.db.Lock(recordLock(tx.BlockNumber, tx.Hash))
		ok, err := s.db.HSetNX(ctx, TransactionsKey(tx.BlockNumber), tx.Hash, data)
		unlock()
		if err != nil {
			return fmt.Errorf("failed to create transaction %s: %w", tx.Hash, err)
		}
		if ok {
			created++
		}
	}

	s.logger.Debug("upserted transactions",
		zap.Int("created", created),
		zap.Int("skipped", len(txs)-created),
	)
	return nil
}

// GetTransactionsForBlock returns every transaction of a block ordered by
// its index within the block
func (s *TxStore) GetTransactionsForBlock(ctx context.Context, blockNumber int64) (txs []*models.Transaction, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("get_transactions_for_block", err, start)
	}()

	fields, err := s.db.HGetAll(ctx, TransactionsKey(blockNumber))
	if err != nil {
		return nil, fmt.Errorf("failed to read block %d: %w", blockNumber, err)
	}

	txs = make([]*models.Transaction, 0, len(fields))
	for hash, data := range fields {
		tx, err := decodeTransaction(hash, blockNumber, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode transaction %s: %w", hash, err)
		}
		txs = append(txs, tx)
	}

	// Hash breaks ties so the order never depends on store iteration
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Index != txs[j].Index {
			return txs[i].Index < txs[j].Index
		}
		return txs[i].Hash < txs[j].Hash
	})
	return txs, nil
}

// GetTransaction returns a single transaction of a block, or nil if absent
func (s *TxStore) GetTransaction(ctx context.Context, blockNumber int64, hash string) (tx *models.Transaction, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("get_transaction", err, start)
	}()

	data, err := s.db.HGet(ctx, TransactionsKey(blockNumber), hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction %s: %w", hash, err)
	}
	if data == nil {
		return nil, nil
	}
	return decodeTransaction(hash, blockNumber, data)
}

// SetOutputsFetched marks the outputs of a transaction as retrieved. A
// missing record is created holding only the flag.
func (s *TxStore) SetOutputsFetched(ctx context.Context, tx *models.Transaction) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("set_outputs_fetched", err, start)
	}()

	key := TransactionsKey(tx.BlockNumber)
	unlock := s.db.Lock(recordLock(tx.BlockNumber, tx.Hash))
	defer unlock()

	data, err := s.db.HGet(ctx, key, tx.Hash)
	if err != nil {
		return fmt.Errorf("failed to read transaction %s: %w", tx.Hash, err)
	}
	r, err := decodeRecord(data)
	if err != nil {
		return err
	}
	if err := r.put(FieldOutputsFetched, true); err != nil {
		return err
	}
	data, err = r.encode()
	if err != nil {
		return err
	}
	if err := s.db.HSet(ctx, key, tx.Hash, data); err != nil {
		return fmt.Errorf("failed to write transaction %s: %w", tx.Hash, err)
	}
	return nil
}

// GetOutputsAlreadyFetched reports whether the outputs of a transaction have
// been retrieved. Absent records and flags read as false.
func (s *TxStore) GetOutputsAlreadyFetched(ctx context.Context, tx *models.Transaction) (fetched bool, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("get_outputs_already_fetched", err, start)
	}()

	data, err := s.db.HGet(ctx, TransactionsKey(tx.BlockNumber), tx.Hash)
	if err != nil {
		return false, fmt.Errorf("failed to read transaction %s: %w", tx.Hash, err)
	}
	if data == nil {
		return false, nil
	}
	r, err := decodeRecord(data)
	if err != nil {
		return false, err
	}
	if _, err := r.get(FieldOutputsFetched, &fetched); err != nil {
		return false, err
	}
	return fetched, nil
}

// DeleteTransactionsForBlock removes every transaction record of a block and
// returns how many were removed. Outputs and output indexes are kept.
func (s *TxStore) DeleteTransactionsForBlock(ctx context.Context, blockNumber int64) (removed int, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("delete_transactions_for_block", err, start)
	}()

	key := TransactionsKey(blockNumber)
	hashes, err := s.db.HKeys(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to list block %d: %w", blockNumber, err)
	}
	if len(hashes) == 0 {
		return 0, nil
	}

	removed, err = s.db.HDel(ctx, key, hashes...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete block %d: %w", blockNumber, err)
	}

	s.logger.Info("deleted transactions for block",
		zap.Int64("block_number", blockNumber),
		zap.Int("removed", removed),
	)
	return removed, nil
}
