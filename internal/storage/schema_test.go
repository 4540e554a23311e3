package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureSchema(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	tests := []struct {
		name    string
		stored  string
		wantErr bool
	}{
		{name: "fresh database"},
		{name: "same version", stored: SchemaVersion},
		{name: "newer minor", stored: "1.3.0"},
		{name: "other major", stored: "2.0.0", wantErr: true},
		{name: "garbage", stored: "v?", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			if tt.stored != "" {
				require.NoError(t, db.Set(ctx, KeySchemaVersion, []byte(tt.stored)))
			}

			err := EnsureSchema(ctx, db, logger)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			v, err := db.Get(ctx, KeySchemaVersion)
			require.NoError(t, err)
			assert.NotEmpty(t, v)
		})
	}
}
