package membership

import (
	"context"

	"github.com/google/uuid"
)

// Member is a gym member as known to the directory
type Member struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Premium     bool      `json:"premium"`
}

// Venue is a partner gym as known to the directory
type Venue struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

// Directory resolves members and venues. Missing ids yield
// coin.ErrMemberNotFound or coin.ErrVenueNotFound.
type Directory interface {
	GetMember(ctx context.Context, id uuid.UUID) (*Member, error)
	GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error)
	VenueNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}
