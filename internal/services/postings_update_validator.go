package services

import (
	"cmp"
	"slices"

	"github.com/ruralpay/ledger/internal/models"
)

const (
	holdNotFoundForBatch = "Hold operation not found for batch (%d) of plan (%s)"
	batchNotInFinalOp    = "Held batch (%d) of plan (%s) is missing from the received list"
	batchPostingsChanged = "Postings of batch (%d) differ from the held ones"
)

// postingKey is what must be preserved between hold and the final operation.
type postingKey struct {
	from, to int64
	amount   int64
	currency string
}

func keyOf(p models.Posting) postingKey {
	return postingKey{from: p.FromAccountID, to: p.ToAccountID, amount: p.Amount, currency: p.CurrencyCode}
}

// samePostings compares two posting lists as multisets, ignoring order and description.
func samePostings(a, b []models.Posting) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[postingKey]int, len(a))
	for _, p := range a {
		counts[keyOf(p)]++
	}
	for _, p := range b {
		k := keyOf(p)
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}

// groupByBatch splits log rows per batch id, keeping the order batches first appear in.
func groupByBatch(entries []models.PostingLogEntry) ([]int64, map[int64][]models.PostingLogEntry) {
	var order []int64
	batches := make(map[int64][]models.PostingLogEntry)
	for _, e := range entries {
		if _, ok := batches[e.BatchID]; !ok {
			order = append(order, e.BatchID)
		}
		batches[e.BatchID] = append(batches[e.BatchID], e)
	}
	return order, batches
}

func postingsOf(entries []models.PostingLogEntry) []models.Posting {
	postings := make([]models.Posting, 0, len(entries))
	for _, e := range entries {
		postings = append(postings, e.Posting())
	}
	return postings
}

func sortByPostingIndex(entries []models.PostingLogEntry) []models.PostingLogEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b models.PostingLogEntry) int {
		return cmp.Compare(a.PostingIndex, b.PostingIndex)
	})
	return sorted
}

// ValidatePostingsUpdate checks that a commit or rollback carries exactly the held batches,
// each with the same postings. A final operation can confirm or void a hold, never change it.
func ValidatePostingsUpdate(plan models.PostingPlan, held []models.PostingLogEntry) error {
	_, heldBatches := groupByBatch(held)

	received := make(map[int64]struct{}, len(plan.BatchList))
	for _, batch := range plan.BatchList {
		received[batch.ID] = struct{}{}
		entries, ok := heldBatches[batch.ID]
		if !ok {
			return invalidRequest(ErrPostingsMismatch, holdNotFoundForBatch, batch.ID, plan.ID)
		}
		if !samePostings(postingsOf(entries), batch.Postings) {
			return invalidRequest(ErrPostingsMismatch, batchPostingsChanged, batch.ID)
		}
	}
	for batchID := range heldBatches {
		if _, ok := received[batchID]; !ok {
			return invalidRequest(ErrPostingsMismatch, batchNotInFinalOp, batchID, plan.ID)
		}
	}
	return nil
}
