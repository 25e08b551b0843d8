package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"swaprouter/src/database"
	"swaprouter/src/model"
)

// VenueRepository persists venue configuration and status flags.
type VenueRepository struct {
	db *gorm.DB
}

// NewVenueRepository creates a repository on the main read/write database.
func NewVenueRepository() *VenueRepository {
	return &VenueRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *VenueRepository) WithDB(db *gorm.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// UpsertVenue inserts a venue or updates its config in place. The original
// enumeration position (Seq) is preserved on update; venues are never deleted.
func (r *VenueRepository) UpsertVenue(ctx context.Context, venue *model.Venue) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Venue
		err := tx.Where("id = ?", venue.ID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(venue).Error
		}
		if err != nil {
			return err
		}

		venue.Seq = existing.Seq
		venue.CreatedAt = existing.CreatedAt
		return tx.Model(&model.Venue{}).Where("id = ?", venue.ID).Updates(map[string]interface{}{
			"router":            venue.Router,
			"factory":           venue.Factory,
			"swap_selector":     venue.SwapSelector,
			"min_liquidity":     venue.MinLiquidity,
			"fee_bps":           venue.FeeBps,
			"priority":          venue.Priority,
			"is_active":         venue.IsActive,
			"is_healthy":        venue.IsHealthy,
			"status_reason":     venue.StatusReason,
			"last_health_check": venue.LastHealthCheck,
		}).Error
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "VenueRepository",
			"op":       "UpsertVenue",
			"venue_id": venue.ID,
		}).WithError(err).Error("Failed to upsert venue")
		return false, err
	}
	return created, nil
}

// GetVenue fetches a venue by id. Returns (nil, nil) if not found.
func (r *VenueRepository) GetVenue(ctx context.Context, id string) (*model.Venue, error) {
	var venue model.Venue
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&venue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &venue, nil
}

// ListVenues enumerates venues in first-registration order.
func (r *VenueRepository) ListVenues(ctx context.Context) ([]model.Venue, error) {
	var venues []model.Venue
	err := r.db.WithContext(ctx).Order("seq ASC").Find(&venues).Error
	if err != nil {
		logger.WithField("repo", "VenueRepository").
			WithError(err).Error("Failed to list venues")
		return nil, err
	}
	return venues, nil
}

// CountVenues returns the number of registered venues.
func (r *VenueRepository) CountVenues(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Venue{}).Count(&count).Error
	return count, err
}
