package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"swaprouter/src/model"
)

type venueReader interface {
	Get(ctx context.Context, id string) (*model.Venue, error)
	List(ctx context.Context) ([]model.Venue, error)
	Usable(ctx context.Context, id string) bool
}

// ListVenuesHandler enumerates venues in registration order.
func ListVenuesHandler(venues venueReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := venues.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GetVenueHandler fetches one venue's config and status.
func GetVenueHandler(venues venueReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venue, err := venues.Get(r.Context(), chi.URLParam(r, "venueID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, venue)
	}
}

// VenueUsableHandler reports whether the orchestrator may route through the
// venue right now.
func VenueUsableHandler(venues venueReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usable := venues.Usable(r.Context(), chi.URLParam(r, "venueID"))
		writeJSON(w, http.StatusOK, map[string]bool{"usable": usable})
	}
}
