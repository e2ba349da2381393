package components

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/membership"
)

type EligibilityCheckerImpl struct {
	directory membership.Directory
	logger    *slog.Logger
}

func NewEligibilityChecker(directory membership.Directory, logger *slog.Logger) service.EligibilityChecker {
	return &EligibilityCheckerImpl{
		directory: directory,
		logger:    logger,
	}
}

// CheckMember admits only premium members to the coin economy
func (c *EligibilityCheckerImpl) CheckMember(ctx context.Context, memberID uuid.UUID) (*membership.Member, error) {
	member, err := c.directory.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.Premium {
		c.logger.Info("Member is not premium", "member_id", memberID.String())
		return nil, coin.ErrNotEligible
	}
	return member, nil
}

func (c *EligibilityCheckerImpl) CheckVenue(ctx context.Context, venueID uuid.UUID) (*membership.Venue, error) {
	return c.directory.GetVenue(ctx, venueID)
}
