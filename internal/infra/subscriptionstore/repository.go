package subscriptionstore

import (
	"context"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

//go:generate mockgen -source=repository.go -destination=mock.go -package=subscriptionstore

// Repository stores device subscriptions. Upsert is idempotent per device
// token; a device re-subscribing replaces its previous subscription.
type Repository interface {
	Upsert(ctx context.Context, sub *domain.Subscription, latitude, longitude float64) (*domain.Subscription, error)
	GetByDeviceToken(ctx context.Context, deviceToken string) (*domain.Subscription, error)
	List(ctx context.Context) ([]domain.Subscription, error)
	MarkNotified(ctx context.Context, deviceToken string, scheduleBlockSweepID int64, at time.Time) error
	Delete(ctx context.Context, deviceToken string) error
}
