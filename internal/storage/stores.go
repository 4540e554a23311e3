package storage

import (
	"context"

	"go.uber.org/zap"
)

// Stores holds all stores sharing one database
type Stores struct {
	DB            *PebbleDB
	TxStore       *TxStore
	OutputStore   *OutputStore
	TxOutputIndex *TxOutputIndex
}

// NewStores creates all stores using the given database
func NewStores(db *PebbleDB, logger *zap.Logger, metrics Metrics) *Stores {
	index := NewTxOutputIndex(db, logger, metrics)
	return &Stores{
		DB:            db,
		TxStore:       NewTxStore(db, logger, metrics),
		OutputStore:   NewOutputStore(db, index, logger, metrics),
		TxOutputIndex: index,
	}
}

// Open opens the database at path, checks its schema version and builds the
// stores on top of it
func Open(ctx context.Context, path string, opts Options, logger *zap.Logger, metrics Metrics) (*Stores, error) {
	db, err := NewPebbleDB(path, opts)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStores(db, logger, metrics), nil
}

// Close closes the database
func (s *Stores) Close() error {
	return s.DB.Close()
}
