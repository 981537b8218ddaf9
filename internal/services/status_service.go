// Package services – StatusService
//
// This file implements the read-side status resolver for withdrawal
// transactions, including the long-poll mode that waits for a terminal
// state. Because the allocation engine only ever commits completed
// transactions, the pending branch is in practice reserved for a future
// asynchronous fulfillment flow; it is kept faithful to the original
// behavior rather than extended.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
	"github.com/cardvault/card-vault-backend/internal/repo"
)

// Long-poll defaults: re-check every 5s, give up after 30s total.
const (
	defaultPollInterval = 5 * time.Second
	defaultMaxWait      = 30 * time.Second
)

// StatusService resolves transactions by id, optionally long-polling
// until the transaction reaches a terminal state or a deadline elapses.
type StatusService struct {
	// DB is the database handle used for lookups.
	DB *gorm.DB
	// PollInterval overrides the 5s re-check interval (tests use ms).
	PollInterval time.Duration
	// MaxWait overrides the 30s long-poll ceiling.
	MaxWait time.Duration
}

// GetStatus looks up a transaction by id.
//
// Immediate mode (longPoll=false) returns the current row verbatim, or
// ErrTransactionNotFound. In long-poll mode a non-terminal transaction is
// re-checked every PollInterval up to MaxWait; the method returns as soon
// as a terminal status is observed, or the last-observed (possibly still
// pending) state once the deadline elapses; the timeout is a valid
// response, not an error. A caller disconnect cancels ctx and frees the
// request thread.
func (s *StatusService) GetStatus(ctx context.Context, transactionID string, longPoll bool) (*domain.Transaction, error) {
	t, err := s.lookup(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t.Terminal() || !longPoll {
		return t, nil
	}

	interval := s.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxWait := s.MaxWait
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}

	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			// Deadline elapsed; report whatever we saw last.
			return t, nil
		case <-tick.C:
			t, err = s.lookup(ctx, transactionID)
			if err != nil {
				return nil, err
			}
			if t.Terminal() {
				return t, nil
			}
		}
	}
}

func (s *StatusService) lookup(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := repo.GetTransaction(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}
