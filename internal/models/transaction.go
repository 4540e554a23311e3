package models

import (
	"time"
)

// Transaction represents a transaction recorded for a block
type Transaction struct {
	Hash           string    `json:"hash"`
	BlockNumber    int64     `json:"blockNumber"`
	Index          int       `json:"index"` // position within the block
	Timestamp      time.Time `json:"timestamp"`
	Inputs         []Input   `json:"inputs"`
	OutputsFetched bool      `json:"outputsFetched"`
}

// Input represents a transaction input.
// TransactionHash and BlockNumber are not persisted; they are restored from
// the owning transaction on read.
type Input struct {
	TransactionHash string `json:"transactionHash,omitempty"`
	BlockNumber     int64  `json:"blockNumber,omitempty"`
	Index           int    `json:"index"`
	OutputHash      string `json:"outputHash,omitempty"` // spent output, <txHash>:<index>
}
