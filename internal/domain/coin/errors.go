package coin

import (
	"errors"

	"github.com/google/uuid"
)

// Domain errors surfaced to callers
var (
	ErrNotEligible              = errors.New("member is not eligible to redeem coins")
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrInsufficientBalance      = errors.New("insufficient coin balance")
	ErrInsufficientVenueBalance = errors.New("insufficient venue coin balance")
	ErrAlreadyRedeemedToday     = errors.New("coin already redeemed at this venue today")
	ErrNotFound                 = errors.New("not found")
	ErrTransient                = errors.New("transient storage failure")
)

// ErrBalanceTooLow is returned by balance stores when a conditional debit
// finds fewer coins than requested.
var ErrBalanceTooLow = errors.New("balance too low for debit")

// ErrMemberNotFound indicates a member unknown to the directory
type ErrMemberNotFound struct {
	MemberID uuid.UUID
}

func (e ErrMemberNotFound) Error() string {
	return "member not found: " + e.MemberID.String()
}

// Is matches ErrNotFound and any ErrMemberNotFound with the same or a nil id
func (e ErrMemberNotFound) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	t, ok := target.(ErrMemberNotFound)
	if !ok {
		return false
	}
	return t.MemberID == uuid.Nil || t.MemberID == e.MemberID
}

// ErrVenueNotFound indicates a venue unknown to the directory
type ErrVenueNotFound struct {
	VenueID uuid.UUID
}

func (e ErrVenueNotFound) Error() string {
	return "venue not found: " + e.VenueID.String()
}

// Is matches ErrNotFound and any ErrVenueNotFound with the same or a nil id
func (e ErrVenueNotFound) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	t, ok := target.(ErrVenueNotFound)
	if !ok {
		return false
	}
	return t.VenueID == uuid.Nil || t.VenueID == e.VenueID
}

// IsDomainError reports whether err belongs to the caller-facing taxonomy.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotEligible,
		ErrInvalidAmount,
		ErrInsufficientBalance,
		ErrInsufficientVenueBalance,
		ErrAlreadyRedeemedToday,
		ErrNotFound,
		ErrTransient,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
