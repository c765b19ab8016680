package schedulestore

import (
	"context"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

//go:generate mockgen -source=repository.go -destination=mock.go -package=schedulestore

// Repository provides read access to schedule rows and parking regulations.
type Repository interface {
	// Closest returns the raw schedule rows nearest to the coordinates.
	// Proximity ranking happens inside the store's RPC function.
	Closest(ctx context.Context, latitude, longitude float64) ([]domain.SweepRow, error)

	// GetByBlockSweepID fetches a single schedule row.
	GetByBlockSweepID(ctx context.Context, blockSweepID int64) (*domain.SweepRow, error)

	// GetRegulationByID fetches a single parking regulation.
	GetRegulationByID(ctx context.Context, id int64) (*domain.ParkingRegulation, error)
}
