package stages

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestList(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow("s-1", "Lead Capture").
		AddRow("s-2", "Lead Generation")
	mock.ExpectQuery("SELECT id, name FROM lead_stages").WillReturnRows(rows)

	stages, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "Lead Capture", stages[0].Name)
}

func TestDeleteInUse(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM leads WHERE stage_id").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	err := store.Delete(context.Background(), "s-1")
	assert.ErrorIs(t, err, ErrStageInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM leads WHERE stage_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM lead_stages").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM leads WHERE stage_id").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM lead_stages").
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "s-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedWhenEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM lead_stages").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	for range DefaultStages {
		mock.ExpectExec("INSERT INTO lead_stages").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, store.Seed(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedSkipsWhenPopulated(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM lead_stages").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	require.NoError(t, store.Seed(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
