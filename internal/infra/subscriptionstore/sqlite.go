package subscriptionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS subscriptions (
	device_token            TEXT PRIMARY KEY,
	platform                TEXT NOT NULL DEFAULT '',
	schedule_block_sweep_id INTEGER NOT NULL,
	latitude                REAL NOT NULL DEFAULT 0,
	longitude               REAL NOT NULL DEFAULT 0,
	lead_minutes            INTEGER NOT NULL,
	last_notified_at        TEXT,
	subscription_type       TEXT NOT NULL DEFAULT 'sweeping'
);
`

// SQLiteStore is a file-backed subscription store for single-node
// deployments and local development, interchangeable with the REST client.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Upsert(ctx context.Context, sub *domain.Subscription, latitude, longitude float64) (*domain.Subscription, error) {
	subType := sub.Type
	if subType == "" {
		subType = domain.SubscriptionSweeping
	}

	// last_notified_at is deliberately left untouched so a re-subscribe
	// does not reset de-duplication state.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions
			(device_token, platform, schedule_block_sweep_id, latitude, longitude, lead_minutes, subscription_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_token) DO UPDATE SET
			platform = excluded.platform,
			schedule_block_sweep_id = excluded.schedule_block_sweep_id,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			lead_minutes = excluded.lead_minutes,
			subscription_type = excluded.subscription_type`,
		sub.DeviceToken, sub.Platform, sub.ScheduleBlockSweepID,
		latitude, longitude, sub.LeadMinutes, string(subType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return s.GetByDeviceToken(ctx, sub.DeviceToken)
}

func (s *SQLiteStore) GetByDeviceToken(ctx context.Context, deviceToken string) (*domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT device_token, platform, schedule_block_sweep_id, lead_minutes, last_notified_at, subscription_type
		FROM subscriptions WHERE device_token = ?`, deviceToken)

	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: device token %s", domain.ErrSubscriptionNotFound, deviceToken)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT device_token, platform, schedule_block_sweep_id, lead_minutes, last_notified_at, subscription_type
		FROM subscriptions ORDER BY device_token`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return subs, nil
}

func (s *SQLiteStore) MarkNotified(ctx context.Context, deviceToken string, scheduleBlockSweepID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET last_notified_at = ?
		WHERE device_token = ? AND schedule_block_sweep_id = ?`,
		at.Format(time.RFC3339), deviceToken, scheduleBlockSweepID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark subscription notified: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, deviceToken string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE device_token = ?`, deviceToken)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: device token %s", domain.ErrSubscriptionNotFound, deviceToken)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var (
		sub          domain.Subscription
		lastNotified sql.NullString
		subType      string
	)
	if err := row.Scan(
		&sub.DeviceToken, &sub.Platform, &sub.ScheduleBlockSweepID,
		&sub.LeadMinutes, &lastNotified, &subType,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}

	if lastNotified.Valid {
		at, err := time.Parse(time.RFC3339, lastNotified.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_notified_at: %w", err)
		}
		sub.LastNotifiedAt = &at
	}
	sub.Type = domain.SubscriptionType(subType)

	return &sub, nil
}
