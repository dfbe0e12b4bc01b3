package models

import (
	"math"
	"time"
)

// PostingOperation is the lifecycle step a posting log row or plan log row belongs to.
type PostingOperation string

const (
	OperationHold     PostingOperation = "HOLD"
	OperationCommit   PostingOperation = "COMMIT"
	OperationRollback PostingOperation = "ROLLBACK"
)

// Batch ids reserved for internal bookkeeping; never valid in caller data.
const (
	ReservedMinBatchID int64 = math.MinInt64
	ReservedMaxBatchID int64 = math.MaxInt64
)

// IsFinal reports whether no further operations are allowed after op.
func (op PostingOperation) IsFinal() bool {
	return op == OperationCommit || op == OperationRollback
}

type Posting struct {
	FromAccountID int64  `json:"fromId"`
	ToAccountID   int64  `json:"toId"`
	Amount        int64  `json:"amount"` // in minor units
	CurrencyCode  string `json:"currencySymCode"`
	Description   string `json:"description"`
}

type PostingBatch struct {
	ID       int64     `json:"id"`
	Postings []Posting `json:"postings"`
}

type PostingPlan struct {
	ID        string         `json:"id"`
	BatchList []PostingBatch `json:"batchList"`
}

// PostingPlanChange carries a single batch for a hold.
type PostingPlanChange struct {
	ID    string        `json:"id"`
	Batch *PostingBatch `json:"batch"`
}

// PostingLogEntry is an immutable row of the posting log.
type PostingLogEntry struct {
	ID            int64            `json:"id" db:"id"`
	PlanID        string           `json:"plan_id" db:"plan_id"`
	BatchID       int64            `json:"batch_id" db:"batch_id"`
	PostingIndex  int              `json:"posting_index" db:"posting_index"`
	FromAccountID int64            `json:"from_account_id" db:"from_account_id"`
	ToAccountID   int64            `json:"to_account_id" db:"to_account_id"`
	Amount        int64            `json:"amount" db:"amount"`
	CurrencyCode  string           `json:"curr_sym_code" db:"curr_sym_code"`
	Operation     PostingOperation `json:"operation" db:"operation"`
	Description   string           `json:"description" db:"description"`
}

// Posting returns the value part of the entry.
func (e PostingLogEntry) Posting() Posting {
	return Posting{
		FromAccountID: e.FromAccountID,
		ToAccountID:   e.ToAccountID,
		Amount:        e.Amount,
		CurrencyCode:  e.CurrencyCode,
		Description:   e.Description,
	}
}

// PlanLogInfo is the single mutation point of a plan's lifecycle.
type PlanLogInfo struct {
	PlanID         string           `json:"plan_id" db:"plan_id"`
	LastBatchID    int64            `json:"last_batch_id" db:"last_batch_id"`
	LastAccessTime time.Time        `json:"last_access_time" db:"last_access_time"`
	LastOperation  PostingOperation `json:"last_operation" db:"last_operation"`
	Clock          int64            `json:"clock" db:"clock"`
}

// NewPostingLogEntries flattens a batch into log rows tagged with op.
func NewPostingLogEntries(planID string, batch PostingBatch, op PostingOperation) []PostingLogEntry {
	entries := make([]PostingLogEntry, 0, len(batch.Postings))
	for i, p := range batch.Postings {
		entries = append(entries, PostingLogEntry{
			PlanID:        planID,
			BatchID:       batch.ID,
			PostingIndex:  i,
			FromAccountID: p.FromAccountID,
			ToAccountID:   p.ToAccountID,
			Amount:        p.Amount,
			CurrencyCode:  p.CurrencyCode,
			Operation:     op,
			Description:   p.Description,
		})
	}
	return entries
}
