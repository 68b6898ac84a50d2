package leads

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockNotificationStore(t *testing.T) (*NotificationStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewNotificationStore(db), mock
}

func TestUnread(t *testing.T) {
	store, mock := newMockNotificationStore(t)

	rows := sqlmock.NewRows([]string{"id", "lead_id", "message", "read", "created_at"}).
		AddRow("n-1", "l-1", "Jane (Acme) has not been contacted since Aug 1, 2026", false, time.Now())
	mock.ExpectQuery("WHERE read = FALSE").WillReturnRows(rows)

	notifications, err := store.Unread(context.Background())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "l-1", notifications[0].LeadID)
	assert.False(t, notifications[0].Read)
}

func TestMarkAllRead(t *testing.T) {
	store, mock := newMockNotificationStore(t)

	mock.ExpectExec("UPDATE lead_notifications SET read = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, store.MarkAllRead(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepStaleCreatesOnePerLead(t *testing.T) {
	store, mock := newMockNotificationStore(t)

	lastContacted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_name", "company_name", "last_contacted_at"}).
		AddRow("l-1", "Jane", "Acme", lastContacted).
		AddRow("l-2", "John", "Globex", lastContacted)
	mock.ExpectQuery("NOT EXISTS").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectExec("INSERT INTO lead_notifications").
		WithArgs(sqlmock.AnyArg(), "l-1", "Jane (Acme) has not been contacted since Aug 1, 2026", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO lead_notifications").
		WithArgs(sqlmock.AnyArg(), "l-2", "John (Globex) has not been contacted since Aug 1, 2026", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := store.SweepStale(context.Background(), 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepStaleNothingStale(t *testing.T) {
	store, mock := newMockNotificationStore(t)

	mock.ExpectQuery("NOT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_name", "company_name", "last_contacted_at"}))

	created, err := store.SweepStale(context.Background(), 7*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, created)
}
