package visit

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of visits retained per member
const DefaultCapacity = 10

// Entry is one recorded check-in
type Entry struct {
	VenueID   uuid.UUID `json:"venue_id"`
	VisitedAt time.Time `json:"visited_at"`
}

// History is a member's bounded, most-recent-first list of check-ins.
// DistinctVenueCount counts distinct venues among the retained entries only,
// so it can undercount once older visits fall off the list.
type History struct {
	MemberID           uuid.UUID `json:"member_id"`
	Entries            []Entry   `json:"entries"`
	DistinctVenueCount int       `json:"distinct_venue_count"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewHistory returns an empty history for a member
func NewHistory(memberID uuid.UUID) *History {
	return &History{
		MemberID: memberID,
		Entries:  []Entry{},
	}
}

// Record prepends a visit, drops entries beyond capacity and recomputes the
// distinct venue count.
func (h *History) Record(venueID uuid.UUID, at time.Time, capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	entries := make([]Entry, 0, min(len(h.Entries)+1, capacity))
	entries = append(entries, Entry{VenueID: venueID, VisitedAt: at.UTC()})
	for _, e := range h.Entries {
		if len(entries) == capacity {
			break
		}
		entries = append(entries, e)
	}

	h.Entries = entries
	h.DistinctVenueCount = countDistinct(entries)
	h.UpdatedAt = at.UTC()
}

func countDistinct(entries []Entry) int {
	seen := make(map[uuid.UUID]struct{}, len(entries))
	for _, e := range entries {
		seen[e.VenueID] = struct{}{}
	}
	return len(seen)
}
