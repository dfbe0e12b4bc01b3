package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	t.Run("invalid request keeps its kind", func(t *testing.T) {
		err := invalidRequest(ErrPostingsMismatch, batchPostingsChanged, 4)

		assert.ErrorIs(t, err, ErrPostingsMismatch)
		assert.NotErrorIs(t, err, ErrInvalidRequest)
		assert.Equal(t, "postings do not match held postings: Postings of batch (4) differ from the held ones", err.Error())
	})

	t.Run("storage errors are unavailable and keep the cause", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := fmt.Errorf("wrapped: %w", storageError("get max clock", cause))

		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrPlanNotFound)

		var storageErr *StorageError
		assert.ErrorAs(t, err, &storageErr)
		assert.Equal(t, "get max clock", storageErr.Op)
	})

	t.Run("posting params error lists every posting", func(t *testing.T) {
		err := &InvalidPostingParamsError{PlanID: "p1", BatchID: 2, Violations: []PostingViolation{
			{Index: 0, Message: amountNegativeErr},
			{Index: 3, Message: accountNotFoundErr},
		}}

		assert.ErrorIs(t, err, ErrInvalidPostingParams)
		assert.Equal(t,
			"invalid posting params: plan p1 batch 2: posting #0: Amount cannot be negative, posting #3: Account for posting not found",
			err.Error())
	})
}
