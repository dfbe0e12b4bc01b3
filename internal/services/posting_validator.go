package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ruralpay/ledger/internal/models"
	"go.uber.org/zap"
)

const (
	sourceTargetAccEqualErr = "Source and target accounts cannot be the same"
	amountNegativeErr       = "Amount cannot be negative"
	accountNotFoundErr      = "Account for posting not found"
	currencyMismatchErr     = "Account currency does not match posting currency"
	descriptionTooLongErr   = "Description is longer than 4096 characters"

	postingPlanIDEmpty        = "Plan id must not be empty"
	postingPlanIDTooLong      = "Plan id is longer than %d characters"
	postingPlanEmpty          = "Plan (%s) has no batches inside"
	postingBatchEmpty         = "Posting batch (%d) has no postings inside"
	postingBatchTooLarge      = "Posting batch (%d) has %d postings, limit is %d"
	postingBatchDuplicate     = "Batch (%d) has duplicate in received list"
	postingBatchIDReserved    = "Batch in plan (%s) is not allowed to have the reserved min or max id"
	DefaultMaxPostingsInBatch = 1000

	// column widths of plan_id and description
	maxPlanIDLength      = 64
	maxDescriptionLength = 4096
)

// PostingBatchValidator checks the shape of a batch and every posting inside it.
type PostingBatchValidator struct {
	accounts    AccountReader
	maxPostings int
	logger      *zap.Logger
}

func NewPostingBatchValidator(accounts AccountReader, maxPostings int, logger *zap.Logger) *PostingBatchValidator {
	if maxPostings <= 0 {
		maxPostings = DefaultMaxPostingsInBatch
	}
	return &PostingBatchValidator{
		accounts:    accounts,
		maxPostings: maxPostings,
		logger:      logger,
	}
}

// Validate collects every posting violation before failing, so callers see all problems at once.
func (v *PostingBatchValidator) Validate(ctx context.Context, batch *models.PostingBatch, planID string) error {
	if batch == nil {
		v.logger.Warn("plan has no batch", zap.String("plan_id", planID))
		return invalidRequest(ErrInvalidRequest, postingPlanEmpty, planID)
	}
	if len(batch.Postings) == 0 {
		v.logger.Warn("batch has no postings", zap.String("plan_id", planID), zap.Int64("batch_id", batch.ID))
		return invalidRequest(ErrInvalidRequest, postingBatchEmpty, batch.ID)
	}
	if len(batch.Postings) > v.maxPostings {
		return invalidRequest(ErrInvalidRequest, postingBatchTooLarge, batch.ID, len(batch.Postings), v.maxPostings)
	}

	violations, err := v.validatePostings(ctx, batch.Postings)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		v.logger.Warn("batch has invalid postings",
			zap.String("plan_id", planID),
			zap.Int64("batch_id", batch.ID),
			zap.Int("violations", len(violations)))
		return &InvalidPostingParamsError{PlanID: planID, BatchID: batch.ID, Violations: violations}
	}
	return nil
}

func (v *PostingBatchValidator) validatePostings(ctx context.Context, postings []models.Posting) ([]PostingViolation, error) {
	// accounts are immutable, so a lookup is shared by every posting of this call
	seen := make(map[int64]*models.Account)
	lookup := func(id int64) (*models.Account, error) {
		if account, ok := seen[id]; ok {
			return account, nil
		}
		account, err := v.accounts.GetAccountByID(ctx, id)
		if errors.Is(err, ErrAccountNotFound) {
			account, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		seen[id] = account
		return account, nil
	}

	var violations []PostingViolation
	for i, posting := range postings {
		var messages []string
		if posting.FromAccountID == posting.ToAccountID {
			messages = append(messages, sourceTargetAccEqualErr)
		}
		if posting.Amount < 0 {
			messages = append(messages, amountNegativeErr)
		}
		if utf8.RuneCountInString(posting.Description) > maxDescriptionLength {
			messages = append(messages, descriptionTooLongErr)
		}

		from, err := lookup(posting.FromAccountID)
		if err != nil {
			return nil, err
		}
		to, err := lookup(posting.ToAccountID)
		if err != nil {
			return nil, err
		}
		if from == nil || to == nil {
			messages = append(messages, accountNotFoundErr)
		}
		if (from != nil && from.CurrencyCode != posting.CurrencyCode) ||
			(to != nil && to.CurrencyCode != posting.CurrencyCode) {
			messages = append(messages, currencyMismatchErr)
		}

		if len(messages) > 0 {
			violations = append(violations, PostingViolation{
				Index:   i,
				Posting: posting,
				Message: strings.Join(messages, "; "),
			})
		}
	}
	return violations, nil
}

// ValidateHold checks the plan id and batch identity of a hold request.
// Posting content is left to PostingBatchValidator.
func ValidateHold(change models.PostingPlanChange) error {
	if err := validatePlanID(change.ID); err != nil {
		return err
	}
	if change.Batch != nil && isReservedBatchID(change.Batch.ID) {
		return invalidRequest(ErrInvalidRequest, postingBatchIDReserved, change.ID)
	}
	return nil
}

// ValidateFinalOp checks a commit or rollback plan before any posting is looked at.
func ValidateFinalOp(plan models.PostingPlan) error {
	if err := validatePlanID(plan.ID); err != nil {
		return err
	}
	if len(plan.BatchList) == 0 {
		return invalidRequest(ErrInvalidRequest, postingPlanEmpty, plan.ID)
	}

	batchIDs := make(map[int64]struct{}, len(plan.BatchList))
	for _, batch := range plan.BatchList {
		if isReservedBatchID(batch.ID) {
			return invalidRequest(ErrInvalidRequest, postingBatchIDReserved, plan.ID)
		}
		if len(batch.Postings) == 0 {
			return invalidRequest(ErrInvalidRequest, postingBatchEmpty, batch.ID)
		}
		if _, dup := batchIDs[batch.ID]; dup {
			return invalidRequest(ErrInvalidRequest, postingBatchDuplicate, batch.ID)
		}
		batchIDs[batch.ID] = struct{}{}
	}
	return nil
}

func validatePlanID(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalidRequest(ErrInvalidRequest, postingPlanIDEmpty)
	}
	if utf8.RuneCountInString(id) > maxPlanIDLength {
		return invalidRequest(ErrInvalidRequest, postingPlanIDTooLong, maxPlanIDLength)
	}
	return nil
}

func isReservedBatchID(id int64) bool {
	return id == models.ReservedMinBatchID || id == models.ReservedMaxBatchID
}
