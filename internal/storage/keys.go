package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Key layout shared by every read and write path
const (
	PrefixOutput     = "o:"
	PrefixTxOutputs  = "tx:"
	SuffixTxOutputs  = ":outputs"
	KeySchemaVersion = "meta:schema_version"
	outputHashSep    = ":"
)

// TransactionsKey is the hash holding every transaction record of a block
func TransactionsKey(blockNumber int64) string {
	return strconv.FormatInt(blockNumber, 10)
}

// OutputKey is the record key of an output
func OutputKey(outputHash string) string {
	return PrefixOutput + strings.ToLower(outputHash)
}

// TxOutputsKey is the list of output indexes attached to a transaction
func TxOutputsKey(txHash string) string {
	return PrefixTxOutputs + strings.ToLower(txHash) + SuffixTxOutputs
}

// OutputHash builds the composite hash <txHash>:<index>
func OutputHash(txHash string, index int) string {
	return txHash + outputHashSep + strconv.Itoa(index)
}

// ParseOutputHash splits a composite output hash into its transaction hash
// and output index
func ParseOutputHash(outputHash string) (string, int, error) {
	i := strings.LastIndex(outputHash, outputHashSep)
	if i <= 0 || i == len(outputHash)-1 {
		return "", 0, fmt.Errorf("invalid output hash %q", outputHash)
	}
	index, err := strconv.Atoi(outputHash[i+1:])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("invalid output index in %q", outputHash)
	}
	return outputHash[:i], index, nil
}
