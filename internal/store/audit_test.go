// internal/store/audit_test.go
package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "recruitment-analytics/internal/common/errors"
	"recruitment-analytics/internal/common/logger"
	"recruitment-analytics/internal/dataset"
)

func newMockStore(t *testing.T) (*AuditStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuditStore(db, logger.NewTestLogger(t)), mock
}

func TestEnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS dataset_loads").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.EnsureSchema(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLoad(t *testing.T) {
	store, mock := newMockStore(t)

	ds := &dataset.Dataset{
		Version:  "4ac2f7d4-9a1c-4f6a-8a9e-2c6f1d3b5e70",
		Source:   "recruitment.csv",
		Records:  make([]dataset.Record, 3),
		Skipped:  1,
		LoadedAt: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO dataset_loads").
		WithArgs(ds.Version, ds.Source, 3, 1, ds.LoadedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.RecordLoad(context.Background(), ds)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLoadFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO dataset_loads").
		WillReturnError(errors.New("connection reset"))

	err := store.RecordLoad(context.Background(), &dataset.Dataset{Version: "v"})
	require.Error(t, err)
	assert.Equal(t, commonerrors.ErrCodeAuditWriteFailed, commonerrors.CodeOf(err))
}

func TestRecordExport(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO dataset_exports").
		WithArgs(sqlmock.AnyArg(), "4ac2f7d4-9a1c-4f6a-8a9e-2c6f1d3b5e70", 42, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.RecordExport(context.Background(), "4ac2f7d4-9a1c-4f6a-8a9e-2c6f1d3b5e70", 42)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordExportFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO dataset_exports").
		WillReturnError(errors.New("out of disk"))

	err := store.RecordExport(context.Background(), "v", 1)
	require.Error(t, err)
	assert.Equal(t, commonerrors.ErrCodeAuditWriteFailed, commonerrors.CodeOf(err))
}
