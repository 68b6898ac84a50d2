package leads

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationStore persists stale-lead notifications.
type NotificationStore struct {
	db *sql.DB
}

// NewNotificationStore creates a notification store backed by the given
// database.
func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Unread returns all unread notifications, newest first.
func (s *NotificationStore) Unread(ctx context.Context) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, message, read, created_at FROM lead_notifications
		WHERE read = FALSE ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.LeadID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkAllRead marks every unread notification as read.
func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE lead_notifications SET read = TRUE WHERE read = FALSE"); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// SweepStale creates one unread notification for every lead whose last
// contact is older than staleAfter and that has no unread notification yet.
// Re-running the sweep never duplicates a pending notification, so the
// interval can be short without spamming the dashboard.
func (s *NotificationStore) SweepStale(ctx context.Context, staleAfter time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-staleAfter)

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.user_name, l.company_name, l.last_contacted_at FROM leads l
		WHERE l.last_contacted_at < $1
		AND NOT EXISTS (
			SELECT 1 FROM lead_notifications n WHERE n.lead_id = l.id AND n.read = FALSE
		)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("query stale leads: %w", err)
	}

	type staleLead struct {
		id            string
		userName      string
		companyName   string
		lastContacted time.Time
	}
	var stale []staleLead
	for rows.Next() {
		var l staleLead
		if err := rows.Scan(&l.id, &l.userName, &l.companyName, &l.lastContacted); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan stale lead: %w", err)
		}
		stale = append(stale, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate stale leads: %w", err)
	}

	created := 0
	for _, l := range stale {
		message := fmt.Sprintf("%s (%s) has not been contacted since %s",
			l.userName, l.companyName, l.lastContacted.Format("Jan 2, 2006"))
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO lead_notifications (id, lead_id, message, read, created_at)
			VALUES ($1, $2, $3, FALSE, $4)`,
			uuid.NewString(), l.id, message, time.Now().UTC(),
		)
		if err != nil {
			return created, fmt.Errorf("insert notification for lead %s: %w", l.id, err)
		}
		created++
	}
	return created, nil
}
