package models

// Output represents a transaction output and the inscriptions attached to it
type Output struct {
	Hash             string   `json:"hash"` // <transactionHash>:<index>
	TransactionHash  string   `json:"transactionHash,omitempty"`
	Index            int      `json:"index"`
	Address          string   `json:"address,omitempty"` // empty for unspendable outputs
	BlockNumber      int64    `json:"blockNumber"`
	TransactionIndex int      `json:"transactionIndex"`
	Value            int64    `json:"value"` // in satoshis
	Inscriptions     []string `json:"inscriptions"`
}
