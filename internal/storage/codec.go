package storage

import (
	"encoding/json"
	"fmt"
)

// Field is a semantic field name of a stored record
type Field string

// Semantic fields
const (
	FieldHash             Field = "hash"
	FieldBlockNumber      Field = "blockNumber"
	FieldIndex            Field = "index"
	FieldInputs           Field = "inputs"
	FieldTimestamp        Field = "timestamp"
	FieldOutputs          Field = "outputs"
	FieldAddress          Field = "address"
	FieldTransactionIndex Field = "transactionIndex"
	FieldInscriptions     Field = "inscriptions"
	FieldOutputsFetched   Field = "outputsFetched"
	FieldValue            Field = "value"
)

// Short tokens written to disk in place of field names
var fieldTokens = map[Field]string{
	FieldHash:             "h",
	FieldBlockNumber:      "bn",
	FieldIndex:            "i",
	FieldInputs:           "in",
	FieldTimestamp:        "ts",
	FieldOutputs:          "o",
	FieldAddress:          "a",
	FieldTransactionIndex: "ti",
	FieldInscriptions:     "ins",
	FieldOutputsFetched:   "of",
	FieldValue:            "v",
}

var tokenFields = func() map[string]Field {
	m := make(map[string]Field, len(fieldTokens))
	for f, t := range fieldTokens {
		m[t] = f
	}
	return m
}()

// Token returns the on-disk token for f. Unknown fields encode as themselves.
func (f Field) Token() string {
	if t, ok := fieldTokens[f]; ok {
		return t
	}
	return string(f)
}

// ParseField maps an on-disk token back to its field
func ParseField(token string) (Field, bool) {
	f, ok := tokenFields[token]
	return f, ok
}

// record is a stored JSON object keyed by field tokens
type record map[string]json.RawMessage

func decodeRecord(data []byte) (record, error) {
	r := make(record)
	if len(data) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return r, nil
}

func (r record) encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

func (r record) put(f Field, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", f, err)
	}
	r[f.Token()] = data
	return nil
}

// get decodes f into v and reports whether it was present
func (r record) get(f Field, v any) (bool, error) {
	data, ok := r[f.Token()]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("failed to unmarshal %s: %w", f, err)
	}
	return true, nil
}
