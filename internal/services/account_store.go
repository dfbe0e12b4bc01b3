package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ruralpay/ledger/internal/models"
	"go.uber.org/zap"
)

// AccountReader is the read contract the validators and the balance reader need.
type AccountReader interface {
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
}

type AccountStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewAccountStore(db *sql.DB, logger *zap.Logger) *AccountStore {
	return &AccountStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AccountStore) CreateAccount(ctx context.Context, prototype models.AccountPrototype) (int64, error) {
	creationTime := s.now().UTC()
	if prototype.CreationTime != nil {
		creationTime = prototype.CreationTime.UTC()
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (curr_sym_code, creation_time, description)
		VALUES ($1, $2, $3)
		RETURNING id`,
		prototype.CurrencyCode, creationTime, prototype.Description).Scan(&id)
	if err != nil {
		s.logger.Error("account insert failed", zap.String("currency", prototype.CurrencyCode), zap.Error(err))
		return 0, storageError("create account", err)
	}

	s.logger.Info("account created", zap.Int64("account_id", id), zap.String("currency", prototype.CurrencyCode))
	return id, nil
}

func (s *AccountStore) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, curr_sym_code, creation_time, description
		FROM accounts
		WHERE id = $1`, id).Scan(&account.ID, &account.CurrencyCode, &account.CreationTime, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, storageError("get account", err)
	}
	account.Description = description.String
	return &account, nil
}
