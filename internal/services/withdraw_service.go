// Package services – WithdrawService
//
// This file implements the allocation engine: the transactional core that
// hands out exactly one unused card per successful withdrawal, even under
// concurrent requests from many callers. The claim, the used-flag update,
// and the Transaction record commit atomically; the webhook notification
// fires only after the commit and never blocks the caller.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/repo"
)

// Notifier receives fire-and-forget withdrawal events after a successful
// commit. Implementations must not block the caller; the dispatcher in
// internal/notify enqueues onto a bounded worker pool.
type Notifier interface {
	Notify(apiKeyID, transactionID, cardID, cardCode string)
}

// WithdrawResult is the outcome of a committed withdrawal.
type WithdrawResult struct {
	TransactionID string
	CardID        string
	Code          string
}

// WithdrawService implements the atomic allocate-and-mark-used operation.
//
// Row-level exclusivity is delegated to the database: the claim runs with
// a pessimistic SELECT ... FOR UPDATE inside one transaction, so two
// concurrent withdrawals for the same category can never observe the same
// unused card, across processes sharing one database.
type WithdrawService struct {
	// DB is the database handle used for the allocation transaction.
	DB *gorm.DB
	// Notifier, when set, is invoked out-of-band after a successful commit.
	Notifier Notifier

	// BusyRetries bounds re-running the whole transaction when the engine
	// reports lock contention (SQLite busy, MySQL lock wait/deadlock).
	// Values <= 0 default to 3.
	BusyRetries int
}

// Withdraw atomically selects one unused card in the category uniformly at
// random, marks it used by the credential, and records a completed
// Transaction, all in one unit of work.
//
// Semantics:
//   - Empty categoryID → ErrInvalidCategory, nothing touched.
//   - Unknown category → ErrCategoryNotFound, transaction aborted.
//   - No unused card in the category → ErrNoAvailableCards.
//   - Any failure rolls the whole unit back: the card stays unused and no
//     Transaction row is persisted. The engine never synthesizes a failed
//     Transaction on this path.
//
// On success the Notifier is invoked fire-and-forget; notification
// failures never surface to the withdrawal caller.
func (s *WithdrawService) Withdraw(ctx context.Context, apiKeyID, categoryID string) (*WithdrawResult, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, ErrInvalidCategory
	}

	retries := s.BusyRetries
	if retries <= 0 {
		retries = 3
	}

	var res *WithdrawResult
	var err error
	for attempt := 0; ; attempt++ {
		res, err = s.withdrawOnce(ctx, apiKeyID, categoryID)
		if err == nil || !isLockContention(err) || attempt >= retries {
			break
		}
		// Contending writer holds the row set; back off briefly and rerun
		// the whole unit of work against fresh state.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 25 * time.Millisecond):
		}
	}
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.Notify(apiKeyID, res.TransactionID, res.CardID, res.Code)
	}

	log.Debug().
		Str("transaction_id", res.TransactionID).
		Str("card_id", res.CardID).
		Str("category_id", categoryID).
		Str("api_key_id", apiKeyID).
		Msg("card withdrawn")

	return res, nil
}

// withdrawOnce runs a single allocation transaction.
func (s *WithdrawService) withdrawOnce(ctx context.Context, apiKeyID, categoryID string) (*WithdrawResult, error) {
	var out WithdrawResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetCategory(ctx, tx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		card, err := repo.ClaimRandomUnusedCard(ctx, tx, categoryID, apiKeyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoAvailableCards
			}
			return err
		}

		t, err := repo.CreateCompletedTransaction(ctx, tx, apiKeyID, categoryID, card.ID)
		if err != nil {
			return err
		}

		out = WithdrawResult{
			TransactionID: t.ID,
			CardID:        card.ID,
			Code:          card.Code,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// isLockContention classifies driver errors that mean "a concurrent
// writer held the rows"; such failures are safe to rerun because the
// aborted transaction left no side effects.
func isLockContention(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "busy") ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout")
}
