package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "840000", TransactionsKey(840000))
	assert.Equal(t, "o:abcd:1", OutputKey("ABcd:1"))
	assert.Equal(t, "tx:abcd:outputs", TxOutputsKey("ABCD"))
	assert.Equal(t, "abcd:7", OutputHash("abcd", 7))
}

func TestParseOutputHash(t *testing.T) {
	tests := []struct {
		in        string
		wantTx    string
		wantIndex int
		wantErr   bool
	}{
		{in: "abcd:0", wantTx: "abcd", wantIndex: 0},
		{in: "abcd:12", wantTx: "abcd", wantIndex: 12},
		{in: "abcd", wantErr: true},
		{in: ":1", wantErr: true},
		{in: "abcd:", wantErr: true},
		{in: "abcd:x", wantErr: true},
		{in: "abcd:-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tx, index, err := ParseOutputHash(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTx, tx)
			assert.Equal(t, tt.wantIndex, index)
		})
	}
}
