package code

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const scheme = "GYMCOIN"

// Kind identifies who a scannable code belongs to
type Kind string

const (
	KindMember Kind = "MEMBER"
	KindVenue  Kind = "VENUE"
)

var ErrInvalidPayload = errors.New("invalid code payload")

// Payload returns the text encoded into a member or venue code. Payloads are
// not signed; they only carry the identifier.
func Payload(kind Kind, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", scheme, kind, id)
}

// Parse decodes a payload and checks it is of the expected kind
func Parse(payload string, want Kind) (uuid.UUID, error) {
	parts := strings.Split(strings.TrimSpace(payload), ":")
	if len(parts) != 3 || parts[0] != scheme {
		return uuid.Nil, ErrInvalidPayload
	}
	if Kind(parts[1]) != want {
		return uuid.Nil, fmt.Errorf("%w: expected %s code, got %s", ErrInvalidPayload, want, parts[1])
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return id, nil
}
