package services

import (
	"context"
	"fmt"

	"github.com/ruralpay/ledger/internal/models"
	"go.uber.org/zap"
)

const (
	invalidClock     = "Clock is invalid: %v"
	clockNotYetKnown = "clock %d is ahead of the ledger high-water mark %d"
)

// BalanceService derives balances from the posting log. Nothing is cached: every read
// goes back to the store so it can never be older than the requested clock.
type BalanceService struct {
	store    *PlanStore
	accounts AccountReader
	logger   *zap.Logger
}

func NewBalanceService(store *PlanStore, accounts AccountReader, logger *zap.Logger) *BalanceService {
	return &BalanceService{
		store:    store,
		accounts: accounts,
		logger:   logger,
	}
}

// GetBalanceByID folds the account's postings with id <= clock. A latest clock reads up to the
// current high-water mark; a clock beyond it fails with ErrClockNotVisible.
//
// The high-water mark is the largest id written so far. Ids are handed out before their
// transaction commits, so with concurrent writers a posting with an id below the returned
// clock may still become visible later. A clock returned by Hold, Commit or Rollback covers
// every posting of that call.
func (s *BalanceService) GetBalanceByID(ctx context.Context, accountID int64, clock models.Clock) (*models.Balance, error) {
	var requested int64
	if !clock.IsLatest() {
		value, err := clock.Value()
		if err != nil {
			return nil, invalidRequest(ErrInvalidRequest, invalidClock, err)
		}
		requested = value
	}

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	highWater, err := s.store.GetMaxClock(ctx)
	if err != nil {
		return nil, err
	}
	if clock.IsLatest() {
		requested = highWater
	} else if requested > highWater {
		s.logger.Warn("balance requested ahead of high-water mark",
			zap.Int64("account_id", accountID),
			zap.Int64("clock", requested),
			zap.Int64("high_water", highWater))
		return nil, fmt.Errorf(clockNotYetKnown+": %w", requested, highWater, ErrClockNotVisible)
	}

	entries, err := s.store.GetAccountPostings(ctx, accountID, requested)
	if err != nil {
		return nil, err
	}

	balance := FoldBalance(accountID, entries)
	balance.CurrencyCode = account.CurrencyCode
	balance.Clock = models.NewClock(requested)
	return &balance, nil
}

// LatestClock returns the current high-water mark as a clock.
func (s *BalanceService) LatestClock(ctx context.Context) (models.Clock, error) {
	highWater, err := s.store.GetMaxClock(ctx)
	if err != nil {
		return models.Clock{}, err
	}
	return models.NewClock(highWater), nil
}

type batchKey struct {
	planID  string
	batchID int64
}

// FoldBalance reduces posting log rows into a balance for accountID. Rows not touching the
// account are ignored. A HOLD is pending until a COMMIT or ROLLBACK of the same plan batch
// appears; COMMIT rows settle into OwnAmount and ROLLBACK rows contribute nothing.
func FoldBalance(accountID int64, entries []models.PostingLogEntry) models.Balance {
	var own int64
	held := make(map[batchKey][]int64)
	finalized := make(map[batchKey]bool)

	for _, e := range entries {
		var amount int64
		switch accountID {
		case e.FromAccountID:
			amount = -e.Amount
		case e.ToAccountID:
			amount = e.Amount
		default:
			continue
		}

		key := batchKey{planID: e.PlanID, batchID: e.BatchID}
		switch e.Operation {
		case models.OperationHold:
			held[key] = append(held[key], amount)
		case models.OperationCommit:
			own += amount
			finalized[key] = true
		case models.OperationRollback:
			finalized[key] = true
		}
	}

	var pendingDebit, pendingCredit int64
	for key, amounts := range held {
		if finalized[key] {
			continue
		}
		for _, amount := range amounts {
			if amount < 0 {
				pendingDebit += amount
			} else {
				pendingCredit += amount
			}
		}
	}

	return models.Balance{
		AccountID:          accountID,
		OwnAmount:          own,
		MinAvailableAmount: own + pendingDebit,
		MaxAvailableAmount: own + pendingCredit,
	}
}
