package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thanhnp/ord-store/pkg/semver"
)

// SchemaVersion is the version of the key layout and record encoding
const SchemaVersion = "1.0.0"

// EnsureSchema records the schema version of a fresh database and refuses
// databases written with an incompatible major version
func EnsureSchema(ctx context.Context, db KV, logger *zap.Logger) error {
	current := semver.MustParse(SchemaVersion)

	data, err := db.Get(ctx, KeySchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if data == nil {
		if err := db.Set(ctx, KeySchemaVersion, []byte(current.String())); err != nil {
			return fmt.Errorf("failed to write schema version: %w", err)
		}
		logger.Info("initialized schema", zap.String("version", current.String()))
		return nil
	}

	stored, err := semver.Parse(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse schema version: %w", err)
	}
	if !semver.Compatible(stored, current) {
		return fmt.Errorf("incompatible schema version %s, this build reads %d.x", stored, current.Major)
	}
	return nil
}
