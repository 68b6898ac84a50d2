package todos

import (
	"context"
	"database/sql"
	"testing"
	"time"

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

func TestListByUser(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "text", "done", "user_id", "created_at", "updated_at"}).
		AddRow(2, "Call Acme back", false, "u-1", now, now).
		AddRow(1, "Send proposal", true, "u-1", now.Add(-time.Hour), now)
	mock.ExpectQuery("SELECT id, text, done, user_id, created_at, updated_at FROM todos").
		WithArgs("u-1").
		WillReturnRows(rows)

	todos, err := store.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, int64(2), todos[0].ID)
	assert.False(t, todos[0].Done)
}

func TestCreateReturnsID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO todos").
		WithArgs("Call Acme back", false, "u-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	todo, err := store.Create(context.Background(), "Call Acme back", "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), todo.ID)
	assert.Equal(t, "u-1", todo.UserID)
	assert.False(t, todo.Done)
}

func TestToggle(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("UPDATE todos SET done = NOT done").
		WithArgs(sqlmock.AnyArg(), int64(7), "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "done", "user_id", "created_at", "updated_at"}).
			AddRow(7, "Call Acme back", true, "u-1", now, now))

	todo, err := store.Toggle(context.Background(), 7, "u-1")
	require.NoError(t, err)
	assert.True(t, todo.Done)
}

func TestToggleNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("UPDATE todos SET done = NOT done").
		WithArgs(sqlmock.AnyArg(), int64(99), "u-1").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Toggle(context.Background(), 99, "u-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteScopedToUser(t *testing.T) {
	store, mock := newMockStore(t)

	// Another user's todo looks like a missing row.
	mock.ExpectExec("DELETE FROM todos").
		WithArgs(int64(7), "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), 7, "intruder")
	assert.ErrorIs(t, err, ErrNotFound)
}
