package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/code"
	"github.com/gym-coin-ledger/internal/domain/membership"
)

// CodeRenderer turns a payload into a scannable image
type CodeRenderer interface {
	Render(payload string) ([]byte, error)
}

// CodeServiceImpl issues member and venue codes. Issuing has no effect on
// balances and scanned payloads are parsed, not verified.
type CodeServiceImpl struct {
	directory membership.Directory
	renderer  CodeRenderer
	logger    *slog.Logger
}

func NewCodeService(directory membership.Directory, renderer CodeRenderer, logger *slog.Logger) *CodeServiceImpl {
	return &CodeServiceImpl{
		directory: directory,
		renderer:  renderer,
		logger:    logger,
	}
}

func (s *CodeServiceImpl) MemberCode(ctx context.Context, memberID uuid.UUID) (*IssuedCode, error) {
	if _, err := s.directory.GetMember(ctx, memberID); err != nil {
		return nil, classify(err)
	}
	return s.issue(code.KindMember, memberID)
}

func (s *CodeServiceImpl) VenueCode(ctx context.Context, venueID uuid.UUID) (*IssuedCode, error) {
	if _, err := s.directory.GetVenue(ctx, venueID); err != nil {
		return nil, classify(err)
	}
	return s.issue(code.KindVenue, venueID)
}

func (s *CodeServiceImpl) issue(kind code.Kind, id uuid.UUID) (*IssuedCode, error) {
	payload := code.Payload(kind, id)
	png, err := s.renderer.Render(payload)
	if err != nil {
		s.logger.Error("Failed to render code", "kind", string(kind), "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to render %s code: %w", kind, err)
	}
	return &IssuedCode{Payload: payload, PNG: png}, nil
}

// ResolveCodes extracts the member and venue ids from scanned payloads
func (s *CodeServiceImpl) ResolveCodes(memberCode, venueCode string) (uuid.UUID, uuid.UUID, error) {
	memberID, err := code.Parse(memberCode, code.KindMember)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	venueID, err := code.Parse(venueCode, code.KindVenue)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return memberID, venueID, nil
}
