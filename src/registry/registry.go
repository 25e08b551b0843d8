package registry

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"

	"swaprouter/src/events"
	"swaprouter/src/model"
)

var (
	ErrVenueNotRegistered = errors.New("registry: venue not registered")
	ErrVenueInactive      = errors.New("registry: venue inactive")
	ErrVenueUnhealthy     = errors.New("registry: venue unhealthy")
	ErrUnauthorized       = errors.New("registry: caller is not the admin")
	ErrInvalidConfig      = errors.New("registry: invalid venue config")
)

// Store is the persistence surface the registry runs on. Upsert must keep
// the original enumeration position when the id already exists.
type Store interface {
	UpsertVenue(ctx context.Context, venue *model.Venue) (created bool, err error)
	GetVenue(ctx context.Context, id string) (*model.Venue, error)
	ListVenues(ctx context.Context) ([]model.Venue, error)
	CountVenues(ctx context.Context) (int64, error)
}

type adminView interface {
	IsAdmin(caller common.Address) bool
}

// VenueConfig is the admin-supplied venue description.
type VenueConfig struct {
	Router       common.Address
	Factory      common.Address
	SwapSelector string
	MinLiquidity *big.Int
	FeeBps       int64
	Priority     int
}

// Registry catalogs tradable liquidity venues and their activity/health
// flags. Venues are admin-managed, enumerable in insertion order and never
// deleted.
type Registry struct {
	store   Store
	admin   adminView
	emitter *events.Emitter
	now     func() time.Time
}

// New creates a Registry on top of a venue store.
func New(store Store, admin adminView, emitter *events.Emitter) *Registry {
	return &Registry{store: store, admin: admin, emitter: emitter, now: time.Now}
}

// Register upserts a venue. The first registration appends it to the
// enumeration; later calls only update its config.
func (r *Registry) Register(ctx context.Context, caller common.Address, id string, config VenueConfig) error {
	if !r.admin.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if id == "" || config.Router == (common.Address{}) {
		return ErrInvalidConfig
	}
	if config.FeeBps < 0 {
		return ErrInvalidConfig
	}

	venue := &model.Venue{
		ID:           id,
		Router:       config.Router.Hex(),
		Factory:      config.Factory.Hex(),
		SwapSelector: config.SwapSelector,
		MinLiquidity: model.NewBigInt(config.MinLiquidity),
		FeeBps:       config.FeeBps,
		Priority:     config.Priority,
		IsActive:     true,
		IsHealthy:    true,
	}

	// Re-registration updates config only. Status flags belong to SetActive
	// and SetHealth; a disabled venue must not come back via an upsert.
	existing, err := r.store.GetVenue(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		venue.IsActive = existing.IsActive
		venue.IsHealthy = existing.IsHealthy
		venue.StatusReason = existing.StatusReason
		venue.LastHealthCheck = existing.LastHealthCheck
	}

	created, err := r.store.UpsertVenue(ctx, venue)
	if err != nil {
		logger.WithError(err).WithField("venue_id", id).Error("failed to register venue")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"venue_id": id,
		"router":   config.Router.Hex(),
		"created":  created,
	}).Info("venue registered")

	r.emitter.Emit(events.Event{
		Type:    events.TypeVenueRegistered,
		VenueID: id,
		Data:    map[string]interface{}{"router": config.Router.Hex(), "created": created},
	})
	return nil
}

// SetActive flips the activity flag with an operator-supplied reason.
func (r *Registry) SetActive(ctx context.Context, caller common.Address, id string, active bool, reason string) error {
	if !r.admin.IsAdmin(caller) {
		return ErrUnauthorized
	}

	venue, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	venue.IsActive = active
	venue.StatusReason = reason
	if _, err := r.store.UpsertVenue(ctx, venue); err != nil {
		return err
	}

	r.emitter.Emit(events.Event{
		Type:    events.TypeVenueStatusChanged,
		VenueID: id,
		Data:    map[string]interface{}{"active": active, "reason": reason},
	})
	return nil
}

// SetHealth flips the health flag and stamps the check time.
func (r *Registry) SetHealth(ctx context.Context, caller common.Address, id string, healthy bool) error {
	if !r.admin.IsAdmin(caller) {
		return ErrUnauthorized
	}

	venue, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	checkedAt := r.now().UTC()
	venue.IsHealthy = healthy
	venue.LastHealthCheck = &checkedAt
	if _, err := r.store.UpsertVenue(ctx, venue); err != nil {
		return err
	}

	r.emitter.Emit(events.Event{
		Type:    events.TypeVenueStatusChanged,
		VenueID: id,
		Data:    map[string]interface{}{"healthy": healthy},
	})
	return nil
}

// Validate checks the three routing preconditions in order: registered,
// active, healthy. Reads the live store; nothing is cached.
func (r *Registry) Validate(ctx context.Context, id string) (*model.Venue, error) {
	venue, err := r.store.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, ErrVenueNotRegistered
	}
	if !venue.IsActive {
		return nil, ErrVenueInactive
	}
	if !venue.IsHealthy {
		return nil, ErrVenueUnhealthy
	}
	return venue, nil
}

// Usable reports whether a venue passes Validate, without the error detail.
func (r *Registry) Usable(ctx context.Context, id string) bool {
	_, err := r.Validate(ctx, id)
	return err == nil
}

// Get fetches a venue by id.
func (r *Registry) Get(ctx context.Context, id string) (*model.Venue, error) {
	return r.get(ctx, id)
}

// List enumerates venues in insertion order.
func (r *Registry) List(ctx context.Context) ([]model.Venue, error) {
	return r.store.ListVenues(ctx)
}

// Count returns the number of registered venues.
func (r *Registry) Count(ctx context.Context) (int64, error) {
	return r.store.CountVenues(ctx)
}

func (r *Registry) get(ctx context.Context, id string) (*model.Venue, error) {
	venue, err := r.store.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, ErrVenueNotRegistered
	}
	return venue, nil
}
