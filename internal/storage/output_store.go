package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thanhnp/ord-store/internal/models"
)

// OutputStore handles output storage operations. Each output is a single
// record keyed by its composite hash.
type OutputStore struct {
	db      KV
	index   *TxOutputIndex
	logger  *zap.Logger
	metrics Metrics
}

// NewOutputStore creates a new OutputStore registering outputs in index
func NewOutputStore(db KV, index *TxOutputIndex, logger *zap.Logger, metrics Metrics) *OutputStore {
	return &OutputStore{
		db:      db,
		index:   index,
		logger:  logger.Named("outputStore"),
		metrics: metricsOrNop(metrics),
	}
}

// encodeOutput builds the record written by UpdateOutputs. Inscriptions are
// not part of it.
func encodeOutput(tx *models.Transaction, o *models.Output, index int) ([]byte, error) {
	r := make(record)
	if err := r.put(FieldIndex, index); err != nil {
		return nil, err
	}
	if o.Address != "" {
		if err := r.put(FieldAddress, strings.ToLower(o.Address)); err != nil {
			return nil, err
		}
	}
	if err := r.put(FieldBlockNumber, tx.BlockNumber); err != nil {
		return nil, err
	}
	if err := r.put(FieldTransactionIndex, tx.Index); err != nil {
		return nil, err
	}
	if err := r.put(FieldValue, o.Value); err != nil {
		return nil, err
	}
	return r.encode()
}

func decodeOutput(outputHash string, data []byte) (*models.Output, error) {
	txHash, index, err := ParseOutputHash(outputHash)
	if err != nil {
		return nil, err
	}
	r, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}

	o := &models.Output{
		Hash:            outputHash,
		TransactionHash: txHash,
		Index:           index,
	}
	fields := []struct {
		field Field
		dest  any
	}{
		{FieldIndex, &o.Index},
		{FieldAddress, &o.Address},
		{FieldBlockNumber, &o.BlockNumber},
		{FieldTransactionIndex, &o.TransactionIndex},
		{FieldValue, &o.Value},
		{FieldInscriptions, &o.Inscriptions},
	}
	for _, f := range fields {
		if _, err := r.get(f.field, f.dest); err != nil {
			return nil, err
		}
	}
	if o.Inscriptions == nil {
		o.Inscriptions = []string{}
	}
	return o, nil
}

// checkOwnership validates that every output belongs to tx and returns the
// output indexes parsed from their hashes
func checkOwnership(tx *models.Transaction, outputs []*models.Output) ([]int, error) {
	indexes := make([]int, len(outputs))
	for i, o := range outputs {
		txHash, index, err := ParseOutputHash(o.Hash)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
		}
		if !strings.EqualFold(txHash, tx.Hash) {
			return nil, fmt.Errorf("%w: output %s does not belong to transaction %s", ErrIntegrity, o.Hash, tx.Hash)
		}
		indexes[i] = index
	}
	return indexes, nil
}

// UpdateOutputs writes the outputs of a transaction and registers them in the
// transaction output index. Existing records are overwritten, including any
// inscriptions attached to them. Nothing is written if any output fails the
// ownership check.
func (s *OutputStore) UpdateOutputs(ctx context.Context, tx *models.Transaction, outputs []*models.Output) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("update_outputs", err, start)
	}()

	indexes, err := checkOwnership(tx, outputs)
	if err != nil {
		return err
	}

	for i, o := range outputs {
		data, err := encodeOutput(tx, o, indexes[i])
		if err != nil {
			return fmt.Errorf("failed to encode output %s: %w", o.Hash, err)
		}

		key := OutputKey(o.Hash)
		unlock := s.db.Lock(key)
		err = s.db.Set(ctx, key, data)
		unlock()
		if err != nil {
			return fmt.Errorf("failed to write output %s: %w", o.Hash, err)
		}

		if _, err := s.index.Register(ctx, tx.Hash, indexes[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetOutput returns the output with the given composite hash, or nil if it
// has not been recorded
func (s *OutputStore) GetOutput(ctx context.Context, outputHash string) (o *models.Output, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("get_output", err, start)
	}()

	data, err := s.db.Get(ctx, OutputKey(outputHash))
	if err != nil {
		return nil, fmt.Errorf("failed to read output %s: %w", outputHash, err)
	}
	if data == nil {
		return nil, nil
	}
	return decodeOutput(outputHash, data)
}

// RequireOutput is GetOutput for outputs that must exist
func (s *OutputStore) RequireOutput(ctx context.Context, outputHash string) (*models.Output, error) {
	o, err := s.GetOutput(ctx, outputHash)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("output %s: %w", outputHash, ErrNotFound)
	}
	return o, nil
}

// SetInscriptionOnOutput appends an inscription to an existing output
func (s *OutputStore) SetInscriptionOnOutput(ctx context.Context, outputHash, inscriptionID string) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("set_inscription_on_output", err, start)
	}()

	key := OutputKey(outputHash)
	unlock := s.db.Lock(key)
	defer unlock()

	data, err := s.db.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read output %s: %w", outputHash, err)
	}
	if data == nil {
		return fmt.Errorf("output %s: %w", outputHash, ErrNotFound)
	}

	r, err := decodeRecord(data)
	if err != nil {
		return err
	}
	var inscriptions []string
	if _, err := r.get(FieldInscriptions, &inscriptions); err != nil {
		return err
	}
	inscriptions = append(inscriptions, inscriptionID)
	if err := r.put(FieldInscriptions, inscriptions); err != nil {
		return err
	}
	data, err = r.encode()
	if err != nil {
		return err
	}
	if err := s.db.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write output %s: %w", outputHash, err)
	}

	s.logger.Debug("attached inscription",
		zap.String("output", outputHash),
		zap.String("inscription", inscriptionID),
		zap.Int("count", len(inscriptions)),
	)
	return nil
}
