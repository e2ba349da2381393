package service

import (
	"fmt"

	"github.com/gym-coin-ledger/internal/domain/coin"
)

// classify keeps domain errors as they are and marks everything else transient
func classify(err error) error {
	if err == nil || coin.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", coin.ErrTransient, err)
}

func pageOffset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
