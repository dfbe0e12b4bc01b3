package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	maxClockSQL        = `SELECT COALESCE\(MAX\(id\), 0\) FROM posting_log`
	accountPostingsSQL = `SELECT (.+) FROM posting_log WHERE \(from_account_id = \$1 OR to_account_id = \$1\) AND id <= \$2`
)

func logEntry(id int64, planID string, batchID int64, op models.PostingOperation, from, to, amount int64) models.PostingLogEntry {
	return models.PostingLogEntry{
		ID: id, PlanID: planID, BatchID: batchID, Operation: op,
		FromAccountID: from, ToAccountID: to, Amount: amount, CurrencyCode: "USD",
	}
}

func TestFoldBalance(t *testing.T) {
	tests := []struct {
		name     string
		account  int64
		entries  []models.PostingLogEntry
		own      int64
		min, max int64
	}{
		{
			name:    "no postings",
			account: 1,
		},
		{
			name:    "pending debit only lowers min",
			account: 1,
			entries: []models.PostingLogEntry{logEntry(10, "p1", 1, models.OperationHold, 1, 2, 100)},
			own:     0, min: -100, max: 0,
		},
		{
			name:    "pending credit only raises max",
			account: 2,
			entries: []models.PostingLogEntry{logEntry(10, "p1", 1, models.OperationHold, 1, 2, 100)},
			own:     0, min: 0, max: 100,
		},
		{
			name:    "committed hold settles",
			account: 1,
			entries: []models.PostingLogEntry{
				logEntry(10, "p1", 1, models.OperationHold, 1, 2, 100),
				logEntry(11, "p1", 1, models.OperationCommit, 1, 2, 100),
			},
			own: -100, min: -100, max: -100,
		},
		{
			name:    "rolled back hold disappears",
			account: 1,
			entries: []models.PostingLogEntry{
				logEntry(10, "p1", 1, models.OperationHold, 1, 2, 100),
				logEntry(11, "p1", 1, models.OperationRollback, 1, 2, 100),
			},
		},
		{
			name:    "plans are independent",
			account: 1,
			entries: []models.PostingLogEntry{
				logEntry(10, "p1", 1, models.OperationHold, 1, 2, 100),
				logEntry(11, "p2", 1, models.OperationHold, 3, 1, 40),
				logEntry(12, "p1", 1, models.OperationCommit, 1, 2, 100),
				logEntry(13, "p3", 1, models.OperationHold, 1, 3, 7),
			},
			own: -100, min: -107, max: -60,
		},
		{
			name:    "unrelated rows are ignored",
			account: 1,
			entries: []models.PostingLogEntry{logEntry(10, "p1", 1, models.OperationCommit, 2, 3, 100)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance := FoldBalance(tt.account, tt.entries)

			assert.Equal(t, tt.account, balance.AccountID)
			assert.Equal(t, tt.own, balance.OwnAmount)
			assert.Equal(t, tt.min, balance.MinAvailableAmount)
			assert.Equal(t, tt.max, balance.MaxAvailableAmount)
			assert.LessOrEqual(t, balance.MinAvailableAmount, balance.OwnAmount)
			assert.GreaterOrEqual(t, balance.MaxAvailableAmount, balance.OwnAmount)
		})
	}
}

func newTestBalanceService(t *testing.T) (*BalanceService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBalanceService(NewPlanStore(db), accountsWithCurrency("USD", 1, 2), zap.NewNop()), mock
}

func TestBalanceService_GetBalanceByID(t *testing.T) {
	ctx := context.Background()
	history := func() *sqlmock.Rows {
		return sqlmock.NewRows(postingLogCols).
			AddRow(int64(10), "p1", int64(1), 0, int64(1), int64(2), int64(100), "USD", "HOLD", nil)
	}

	t.Run("balance at a past clock", func(t *testing.T) {
		svc, mock := newTestBalanceService(t)
		mock.ExpectQuery(maxClockSQL).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(11)))
		mock.ExpectQuery(accountPostingsSQL).WithArgs(int64(1), int64(10)).WillReturnRows(history())

		balance, err := svc.GetBalanceByID(ctx, 1, models.NewClock(10))

		require.NoError(t, err)
		assert.Equal(t, "USD", balance.CurrencyCode)
		assert.Equal(t, int64(0), balance.OwnAmount)
		assert.Equal(t, int64(-100), balance.MinAvailableAmount)
		assert.Equal(t, int64(0), balance.MaxAvailableAmount)
		assert.Equal(t, models.NewClock(10), balance.Clock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("latest clock reads at the high-water mark", func(t *testing.T) {
		svc, mock := newTestBalanceService(t)
		mock.ExpectQuery(maxClockSQL).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(11)))
		mock.ExpectQuery(accountPostingsSQL).WithArgs(int64(1), int64(11)).
			WillReturnRows(history().AddRow(int64(11), "p1", int64(1), 0, int64(1), int64(2), int64(100), "USD", "COMMIT", nil))

		balance, err := svc.GetBalanceByID(ctx, 1, models.Clock{})

		require.NoError(t, err)
		assert.Equal(t, int64(-100), balance.OwnAmount)
		assert.Equal(t, int64(-100), balance.MinAvailableAmount)
		assert.Equal(t, int64(-100), balance.MaxAvailableAmount)
		assert.Equal(t, models.NewClock(11), balance.Clock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clock equal to the high-water mark is visible", func(t *testing.T) {
		svc, mock := newTestBalanceService(t)
		mock.ExpectQuery(maxClockSQL).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(10)))
		mock.ExpectQuery(accountPostingsSQL).WithArgs(int64(2), int64(10)).WillReturnRows(history())

		balance, err := svc.GetBalanceByID(ctx, 2, models.NewClock(10))

		require.NoError(t, err)
		assert.Equal(t, int64(100), balance.MaxAvailableAmount)
		assert.Equal(t, models.NewClock(10), balance.Clock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clock ahead of the ledger", func(t *testing.T) {
		svc, mock := newTestBalanceService(t)
		mock.ExpectQuery(maxClockSQL).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(11)))

		_, err := svc.GetBalanceByID(ctx, 1, models.NewClock(12))

		assert.ErrorIs(t, err, ErrClockNotVisible)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed clock", func(t *testing.T) {
		svc, mock := newTestBalanceService(t)

		_, err := svc.GetBalanceByID(ctx, 1, models.Clock{Vector: []byte{1, 2, 3}})

		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown account", func(t *testing.T) {
		svc, mock := newTestBalanceService(t)

		_, err := svc.GetBalanceByID(ctx, 42, models.Clock{})

		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBalanceService_LatestClock(t *testing.T) {
	svc, mock := newTestBalanceService(t)
	mock.ExpectQuery(maxClockSQL).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(0)))

	clock, err := svc.LatestClock(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.NewClock(0), clock)
}
