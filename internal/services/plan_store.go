package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/ruralpay/ledger/internal/models"
)

const postingsRejected = "Postings of plan (%s) rejected by the ledger: %s"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const postingLogColumns = `id, plan_id, batch_id, posting_index, from_account_id, to_account_id, amount, curr_sym_code, operation, description`

const planLogColumns = `plan_id, last_batch_id, last_access_time, last_operation, clock`

// PlanStore owns the posting log and the plan log tables.
// The posting log is append-only: there is no update or delete here.
type PlanStore struct {
	db *sql.DB
}

func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

// BeginTx opens the transaction every mutating engine call runs in.
func (s *PlanStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("begin transaction", err)
	}
	return tx, nil
}

// InsertPostings appends the entries in one statement and returns the highest id assigned along
// with how many rows were written. A row whose (plan, batch, operation, index) already exists is skipped.
func (s *PlanStore) InsertPostings(ctx context.Context, tx *sql.Tx, entries []models.PostingLogEntry) (int64, int, error) {
	if len(entries) == 0 {
		return 0, 0, nil
	}

	n := len(entries)
	planIDs, operations := make([]string, 0, n), make([]string, 0, n)
	batchIDs, indexes := make([]int64, 0, n), make([]int64, 0, n)
	fromIDs, toIDs, amounts := make([]int64, 0, n), make([]int64, 0, n), make([]int64, 0, n)
	currencies, descriptions := make([]string, 0, n), make([]string, 0, n)
	for _, e := range entries {
		planIDs = append(planIDs, e.PlanID)
		batchIDs = append(batchIDs, e.BatchID)
		indexes = append(indexes, int64(e.PostingIndex))
		fromIDs = append(fromIDs, e.FromAccountID)
		toIDs = append(toIDs, e.ToAccountID)
		amounts = append(amounts, e.Amount)
		currencies = append(currencies, e.CurrencyCode)
		operations = append(operations, string(e.Operation))
		descriptions = append(descriptions, e.Description)
	}

	rows, err := tx.QueryContext(ctx, `
		INSERT INTO posting_log (plan_id, batch_id, posting_index, from_account_id, to_account_id, amount, curr_sym_code, operation, description)
		SELECT * FROM unnest($1::text[], $2::bigint[], $3::int[], $4::bigint[], $5::bigint[], $6::bigint[], $7::text[], $8::text[], $9::text[])
		ON CONFLICT (plan_id, batch_id, operation, posting_index) DO NOTHING
		RETURNING id`,
		pq.Array(planIDs), pq.Array(batchIDs), pq.Array(indexes), pq.Array(fromIDs), pq.Array(toIDs),
		pq.Array(amounts), pq.Array(currencies), pq.Array(operations), pq.Array(descriptions))
	if err != nil {
		return 0, 0, insertError(entries[0].PlanID, err)
	}
	defer rows.Close()

	var maxID int64
	inserted := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, 0, storageError("scan posting id", err)
		}
		inserted++
		maxID = max(maxID, id)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, insertError(entries[0].PlanID, err)
	}
	return maxID, inserted, nil
}

// insertError turns data exceptions (SQLSTATE class 22) and integrity constraint violations
// (class 23) into caller errors. Everything else is a storage failure.
func insertError(planID string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && (pqErr.Code.Class() == "22" || pqErr.Code.Class() == "23") {
		return invalidRequest(ErrInvalidRequest, postingsRejected, planID, pqErr.Message)
	}
	return storageError("insert posting", err)
}

// GetBatchPostings returns the rows of one batch under one operation, ordered by posting index.
func (s *PlanStore) GetBatchPostings(ctx context.Context, q querier, planID string, batchID int64, op models.PostingOperation) ([]models.PostingLogEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+postingLogColumns+`
		FROM posting_log
		WHERE plan_id = $1 AND batch_id = $2 AND operation = $3
		ORDER BY posting_index`, planID, batchID, string(op))
	if err != nil {
		return nil, storageError("get batch postings", err)
	}
	return scanPostingLog(rows)
}

// GetPostingLogs returns a plan's rows under one operation, in log order.
func (s *PlanStore) GetPostingLogs(ctx context.Context, q querier, planID string, op models.PostingOperation) ([]models.PostingLogEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+postingLogColumns+`
		FROM posting_log
		WHERE plan_id = $1 AND operation = $2
		ORDER BY id`, planID, string(op))
	if err != nil {
		return nil, storageError("get posting logs", err)
	}
	return scanPostingLog(rows)
}

// GetAccountPostings returns every row touching the account with id <= clock, in log order.
func (s *PlanStore) GetAccountPostings(ctx context.Context, accountID, clock int64) ([]models.PostingLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postingLogColumns+`
		FROM posting_log
		WHERE (from_account_id = $1 OR to_account_id = $1) AND id <= $2
		ORDER BY id`, accountID, clock)
	if err != nil {
		return nil, storageError("get account postings", err)
	}
	return scanPostingLog(rows)
}

// GetMaxClock is the ledger's high-water mark: the largest committed id, 0 when empty.
// A lower id from a transaction still in flight may commit after this value is read.
func (s *PlanStore) GetMaxClock(ctx context.Context) (int64, error) {
	var clock int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM posting_log`).Scan(&clock); err != nil {
		return 0, storageError("get max clock", err)
	}
	return clock, nil
}

// AddOrUpdatePlanLog inserts the plan log row, or overwrites it only while the stored
// operation is still HOLD. It returns ErrPlanFinalized when the row was left untouched.
func (s *PlanStore) AddOrUpdatePlanLog(ctx context.Context, tx *sql.Tx, info models.PlanLogInfo) (*models.PlanLogInfo, error) {
	row := tx.QueryRowContext(ctx, `
		INSERT INTO plan_log (plan_id, last_batch_id, last_access_time, last_operation, clock)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (plan_id) DO UPDATE
		SET last_batch_id = EXCLUDED.last_batch_id,
			last_access_time = EXCLUDED.last_access_time,
			last_operation = EXCLUDED.last_operation,
			clock = GREATEST(plan_log.clock, EXCLUDED.clock)
		WHERE plan_log.last_operation = $6
		RETURNING `+planLogColumns,
		info.PlanID, info.LastBatchID, info.LastAccessTime, string(info.LastOperation), info.Clock, string(models.OperationHold))

	stored, err := scanPlanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanFinalized
	}
	if err != nil {
		return nil, storageError("upsert plan log", err)
	}
	return stored, nil
}

// SelectForUpdatePlanLog locks the plan log row until tx ends.
func (s *PlanStore) SelectForUpdatePlanLog(ctx context.Context, tx *sql.Tx, planID string) (*models.PlanLogInfo, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+planLogColumns+`
		FROM plan_log
		WHERE plan_id = $1
		FOR UPDATE`, planID)
	return s.planLogResult(row, "select plan log for update")
}

func (s *PlanStore) GetPlanLog(ctx context.Context, planID string) (*models.PlanLogInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+planLogColumns+`
		FROM plan_log
		WHERE plan_id = $1`, planID)
	return s.planLogResult(row, "get plan log")
}

// UpdatePlanLog overwrites a row the caller already holds the lock on.
func (s *PlanStore) UpdatePlanLog(ctx context.Context, tx *sql.Tx, info models.PlanLogInfo) (*models.PlanLogInfo, error) {
	row := tx.QueryRowContext(ctx, `
		UPDATE plan_log
		SET last_batch_id = $2, last_access_time = $3, last_operation = $4, clock = GREATEST(clock, $5)
		WHERE plan_id = $1
		RETURNING `+planLogColumns,
		info.PlanID, info.LastBatchID, info.LastAccessTime, string(info.LastOperation), info.Clock)
	return s.planLogResult(row, "update plan log")
}

func (s *PlanStore) planLogResult(row *sql.Row, op string) (*models.PlanLogInfo, error) {
	info, err := scanPlanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, storageError(op, err)
	}
	return info, nil
}

func scanPlanLog(row *sql.Row) (*models.PlanLogInfo, error) {
	var info models.PlanLogInfo
	var op string
	var accessed time.Time
	if err := row.Scan(&info.PlanID, &info.LastBatchID, &accessed, &op, &info.Clock); err != nil {
		return nil, err
	}
	info.LastAccessTime = accessed
	info.LastOperation = models.PostingOperation(op)
	return &info, nil
}

func scanPostingLog(rows *sql.Rows) ([]models.PostingLogEntry, error) {
	defer rows.Close()

	var entries []models.PostingLogEntry
	for rows.Next() {
		var e models.PostingLogEntry
		var op string
		var description sql.NullString
		if err := rows.Scan(&e.ID, &e.PlanID, &e.BatchID, &e.PostingIndex, &e.FromAccountID, &e.ToAccountID,
			&e.Amount, &e.CurrencyCode, &op, &description); err != nil {
			return nil, storageError("scan posting log", err)
		}
		e.Operation = models.PostingOperation(op)
		e.Description = description.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate posting log", err)
	}
	return entries, nil
}
