// internal/store/audit.go

// Package store persists the audit trail of dataset loads and exports.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	commonerrors "recruitment-analytics/internal/common/errors"
	"recruitment-analytics/internal/common/logger"
	"recruitment-analytics/internal/dataset"
)

// AuditStore writes load and export records to Postgres. Writes are
// best-effort: callers log failures and move on.
type AuditStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewAuditStore(db *sql.DB, log logger.Logger) *AuditStore {
	return &AuditStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "audit"}),
	}
}

// EnsureSchema creates the audit tables when they do not exist.
func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS dataset_loads (
	id UUID PRIMARY KEY,
	source TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	loaded_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS dataset_exports (
	id UUID PRIMARY KEY,
	dataset_version UUID NOT NULL,
	row_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// RecordLoad writes one row per dataset load, keyed by the dataset version.
func (s *AuditStore) RecordLoad(ctx context.Context, ds *dataset.Dataset) error {
	query := `INSERT INTO dataset_loads (id, source, row_count, skipped, loaded_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query, ds.Version, ds.Source, ds.Len(), ds.Skipped, ds.LoadedAt)
	if err != nil {
		return commonerrors.NewAuditWriteFailedError(err)
	}

	s.logger.Debug("load recorded", map[string]interface{}{
		"version": ds.Version,
		"rows":    ds.Len(),
	})
	return nil
}

// RecordExport writes one row per served CSV export.
func (s *AuditStore) RecordExport(ctx context.Context, datasetVersion string, rows int) error {
	query := `INSERT INTO dataset_exports (id, dataset_version, row_count, created_at) VALUES ($1, $2, $3, $4)`
	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), datasetVersion, rows, time.Now().UTC())
	if err != nil {
		return commonerrors.NewAuditWriteFailedError(err)
	}
	return nil
}
