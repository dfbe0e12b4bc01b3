package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func usd(from, to, amount int64) models.Posting {
	return models.Posting{FromAccountID: from, ToAccountID: to, Amount: amount, CurrencyCode: "USD"}
}

func TestPostingBatchValidator_Validate(t *testing.T) {
	ctx := context.Background()
	v := NewPostingBatchValidator(accountsWithCurrency("USD", 1, 2, 3), 0, zap.NewNop())

	t.Run("valid batch", func(t *testing.T) {
		batch := &models.PostingBatch{ID: 1, Postings: []models.Posting{usd(1, 2, 100), usd(2, 3, 0)}}
		assert.NoError(t, v.Validate(ctx, batch, "p1"))
	})

	t.Run("nil batch", func(t *testing.T) {
		err := v.Validate(ctx, nil, "p1")
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Contains(t, err.Error(), "Plan (p1) has no batches inside")
	})

	t.Run("empty batch", func(t *testing.T) {
		err := v.Validate(ctx, &models.PostingBatch{ID: 7}, "p1")
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Contains(t, err.Error(), "Posting batch (7) has no postings inside")
	})

	t.Run("self transfer", func(t *testing.T) {
		batch := &models.PostingBatch{ID: 2, Postings: []models.Posting{usd(3, 3, 10)}}

		err := v.Validate(ctx, batch, "p2")

		var postingErr *InvalidPostingParamsError
		require.ErrorAs(t, err, &postingErr)
		assert.ErrorIs(t, err, ErrInvalidPostingParams)
		require.Len(t, postingErr.Violations, 1)
		assert.Equal(t, 0, postingErr.Violations[0].Index)
		assert.Equal(t, usd(3, 3, 10), postingErr.Violations[0].Posting)
		assert.Equal(t, sourceTargetAccEqualErr, postingErr.Violations[0].Message)
	})

	t.Run("every violation is reported", func(t *testing.T) {
		eur := models.Posting{FromAccountID: 1, ToAccountID: 2, Amount: 5, CurrencyCode: "EUR"}
		batch := &models.PostingBatch{ID: 3, Postings: []models.Posting{
			usd(1, 2, 100),
			usd(1, 1, -1),
			usd(1, 99, 10),
			eur,
		}}

		err := v.Validate(ctx, batch, "p3")

		var postingErr *InvalidPostingParamsError
		require.ErrorAs(t, err, &postingErr)
		require.Len(t, postingErr.Violations, 3)
		assert.Equal(t, 1, postingErr.Violations[0].Index)
		assert.Equal(t, sourceTargetAccEqualErr+"; "+amountNegativeErr, postingErr.Violations[0].Message)
		assert.Equal(t, 2, postingErr.Violations[1].Index)
		assert.Equal(t, accountNotFoundErr, postingErr.Violations[1].Message)
		assert.Equal(t, 3, postingErr.Violations[2].Index)
		assert.Equal(t, currencyMismatchErr, postingErr.Violations[2].Message)
	})

	t.Run("description wider than the column", func(t *testing.T) {
		long := usd(1, 2, 5)
		long.Description = strings.Repeat("d", 4097)
		fits := usd(2, 1, 5)
		fits.Description = strings.Repeat("é", 4096)
		batch := &models.PostingBatch{ID: 8, Postings: []models.Posting{fits, long}}

		err := v.Validate(ctx, batch, "p8")

		var postingErr *InvalidPostingParamsError
		require.ErrorAs(t, err, &postingErr)
		require.Len(t, postingErr.Violations, 1)
		assert.Equal(t, 1, postingErr.Violations[0].Index)
		assert.Equal(t, descriptionTooLongErr, postingErr.Violations[0].Message)
	})

	t.Run("batch over the limit", func(t *testing.T) {
		small := NewPostingBatchValidator(accountsWithCurrency("USD", 1, 2), 1, zap.NewNop())
		batch := &models.PostingBatch{ID: 4, Postings: []models.Posting{usd(1, 2, 1), usd(2, 1, 1)}}

		err := small.Validate(ctx, batch, "p4")
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("account store failure is not a violation", func(t *testing.T) {
		accounts := &MockAccountReader{}
		accounts.On("GetAccountByID", ctx, int64(1)).Return(nil, storageError("get account", errors.New("conn reset")))
		failing := NewPostingBatchValidator(accounts, 0, zap.NewNop())

		err := failing.Validate(ctx, &models.PostingBatch{ID: 5, Postings: []models.Posting{usd(1, 2, 1)}}, "p5")

		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.NotErrorIs(t, err, ErrInvalidPostingParams)
	})

	t.Run("each account is looked up once", func(t *testing.T) {
		accounts := accountsWithCurrency("USD", 1, 2)
		counting := NewPostingBatchValidator(accounts, 0, zap.NewNop())
		batch := &models.PostingBatch{ID: 6, Postings: []models.Posting{usd(1, 2, 1), usd(2, 1, 1), usd(1, 2, 3)}}

		require.NoError(t, counting.Validate(ctx, batch, "p6"))
		assert.Len(t, accounts.Calls, 2)
	})
}

func TestValidateHold(t *testing.T) {
	batch := &models.PostingBatch{ID: 1, Postings: []models.Posting{usd(1, 2, 1)}}

	assert.NoError(t, ValidateHold(models.PostingPlanChange{ID: "p1", Batch: batch}))
	assert.NoError(t, ValidateHold(models.PostingPlanChange{ID: strings.Repeat("p", 64), Batch: batch}))
	assert.ErrorIs(t, ValidateHold(models.PostingPlanChange{ID: " ", Batch: batch}), ErrInvalidRequest)

	err := ValidateHold(models.PostingPlanChange{ID: strings.Repeat("p", 65), Batch: batch})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "Plan id is longer than 64 characters")

	for _, id := range []int64{models.ReservedMinBatchID, models.ReservedMaxBatchID} {
		reserved := &models.PostingBatch{ID: id, Postings: batch.Postings}
		assert.ErrorIs(t, ValidateHold(models.PostingPlanChange{ID: "p1", Batch: reserved}), ErrInvalidRequest)
	}
}

func TestValidateFinalOp(t *testing.T) {
	postings := []models.Posting{usd(1, 2, 1)}

	tests := []struct {
		name    string
		plan    models.PostingPlan
		wantErr string
	}{
		{
			name: "valid plan",
			plan: models.PostingPlan{ID: "p1", BatchList: []models.PostingBatch{{ID: 1, Postings: postings}, {ID: 2, Postings: postings}}},
		},
		{
			name:    "plan id wider than the column",
			plan:    models.PostingPlan{ID: strings.Repeat("p", 65), BatchList: []models.PostingBatch{{ID: 1, Postings: postings}}},
			wantErr: "Plan id is longer than 64 characters",
		},
		{
			name:    "no batches",
			plan:    models.PostingPlan{ID: "p1"},
			wantErr: "Plan (p1) has no batches inside",
		},
		{
			name:    "empty batch",
			plan:    models.PostingPlan{ID: "p1", BatchList: []models.PostingBatch{{ID: 1}}},
			wantErr: "Posting batch (1) has no postings inside",
		},
		{
			name:    "duplicate batch",
			plan:    models.PostingPlan{ID: "p1", BatchList: []models.PostingBatch{{ID: 1, Postings: postings}, {ID: 1, Postings: postings}}},
			wantErr: "Batch (1) has duplicate in received list",
		},
		{
			name:    "reserved max batch id",
			plan:    models.PostingPlan{ID: "p1", BatchList: []models.PostingBatch{{ID: models.ReservedMaxBatchID, Postings: postings}}},
			wantErr: "Batch in plan (p1) is not allowed to have the reserved min or max id",
		},
		{
			name:    "reserved min batch id in an otherwise broken plan",
			plan:    models.PostingPlan{ID: "p1", BatchList: []models.PostingBatch{{ID: models.ReservedMinBatchID}}},
			wantErr: "Batch in plan (p1) is not allowed to have the reserved min or max id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFinalOp(tt.plan)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
