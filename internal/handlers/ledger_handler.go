package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	mW "github.com/ruralpay/ledger/internal/middleware"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/services"
	"go.uber.org/zap"
)

const maxBodyBytes = 1_048_576 // 1 MB

type PlanService interface {
	Hold(ctx context.Context, change models.PostingPlanChange) (models.Clock, error)
	Commit(ctx context.Context, plan models.PostingPlan) (models.Clock, error)
	Rollback(ctx context.Context, plan models.PostingPlan) (models.Clock, error)
	GetPlan(ctx context.Context, planID string) (*models.PostingPlan, error)
}

type BalanceReader interface {
	GetBalanceByID(ctx context.Context, accountID int64, clock models.Clock) (*models.Balance, error)
	LatestClock(ctx context.Context) (models.Clock, error)
}

type AccountService interface {
	CreateAccount(ctx context.Context, prototype models.AccountPrototype) (int64, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
}

type ClockResponse struct {
	Clock models.Clock `json:"clock"`
}

type CreateAccountResponse struct {
	ID int64 `json:"id" example:"1"`
}

// LedgerHandler is the HTTP facade over the posting plan engine, balances and accounts.
type LedgerHandler struct {
	plans     PlanService
	balances  BalanceReader
	accounts  AccountService
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewLedgerHandler(plans PlanService, balances BalanceReader, accounts AccountService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		plans:     plans,
		balances:  balances,
		accounts:  accounts,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// Routes mounts the ledger endpoints on r.
func (h *LedgerHandler) Routes(r chi.Router) {
	r.Post("/plans/hold", h.Hold)
	r.Post("/plans/commit", h.CommitPlan)
	r.Post("/plans/rollback", h.RollbackPlan)
	r.Get("/plans/{planId}", h.GetPlan)

	r.Post("/accounts", h.CreateAccount)
	r.Get("/accounts/{accountId}", h.GetAccountByID)
	r.Get("/accounts/{accountId}/balance", h.GetBalanceByID)

	r.Get("/clock/latest", h.GetLatestClock)
}

// Hold reserves a batch of postings for a plan
// @Summary Hold a posting batch
// @Description Provisionally apply one batch of a posting plan. Repeating the same hold is safe.
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PostingPlanChange true "Plan id and batch"
// @Success 200 {object} ClockResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /plans/hold [post]
func (h *LedgerHandler) Hold(w http.ResponseWriter, r *http.Request) {
	var change models.PostingPlanChange
	if !h.decode(w, r, &change) {
		return
	}

	h.logger.Info("hold requested",
		zap.String("client_id", mW.ClientIDFromContext(r.Context())),
		zap.String("plan_id", change.ID))

	clock, err := h.plans.Hold(r.Context(), change)
	if err != nil {
		h.writeError(w, "hold", err)
		return
	}
	services.WriteJSON(w, http.StatusOK, ClockResponse{Clock: clock})
}

// CommitPlan finalizes a held plan
// @Summary Commit a posting plan
// @Description Durably apply every held batch of the plan. The batches must equal the held ones.
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PostingPlan true "Posting plan"
// @Success 200 {object} ClockResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /plans/commit [post]
func (h *LedgerHandler) CommitPlan(w http.ResponseWriter, r *http.Request) {
	h.finalize(w, r, "commit", h.plans.Commit)
}

// RollbackPlan voids a held plan
// @Summary Roll back a posting plan
// @Description Abandon every held batch of the plan. The batches must equal the held ones.
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PostingPlan true "Posting plan"
// @Success 200 {object} ClockResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /plans/rollback [post]
func (h *LedgerHandler) RollbackPlan(w http.ResponseWriter, r *http.Request) {
	h.finalize(w, r, "rollback", h.plans.Rollback)
}

func (h *LedgerHandler) finalize(w http.ResponseWriter, r *http.Request, op string,
	apply func(context.Context, models.PostingPlan) (models.Clock, error)) {
	var plan models.PostingPlan
	if !h.decode(w, r, &plan) {
		return
	}

	h.logger.Info(op+" requested",
		zap.String("client_id", mW.ClientIDFromContext(r.Context())),
		zap.String("plan_id", plan.ID),
		zap.Int("batches", len(plan.BatchList)))

	clock, err := apply(r.Context(), plan)
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, ClockResponse{Clock: clock})
}

// GetPlan returns the postings recorded for a plan
// @Summary Get a posting plan
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan id"
// @Success 200 {object} models.PostingPlan
// @Failure 404 {object} services.ErrorResponse
// @Router /plans/{planId} [get]
func (h *LedgerHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.plans.GetPlan(r.Context(), chi.URLParam(r, "planId"))
	if err != nil {
		h.writeError(w, "get plan", err)
		return
	}
	services.WriteJSON(w, http.StatusOK, plan)
}

// CreateAccount creates a ledger account
// @Summary Create an account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AccountPrototype true "Account prototype"
// @Success 201 {object} CreateAccountResponse
// @Failure 400 {object} services.ErrorResponse
// @Router /accounts [post]
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var prototype models.AccountPrototype
	if !h.decode(w, r, &prototype) {
		return
	}

	if err := h.validator.ValidateStruct(&prototype); err != nil {
		services.SendErrorResponse(w, codeInvalidRequest, "Validation failed", http.StatusBadRequest, err)
		return
	}

	id, err := h.accounts.CreateAccount(r.Context(), prototype)
	if err != nil {
		h.writeError(w, "create account", err)
		return
	}
	services.WriteJSON(w, http.StatusCreated, CreateAccountResponse{ID: id})
}

// GetAccountByID returns an account
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param accountId path int true "Account id"
// @Success 200 {object} models.Account
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountId} [get]
func (h *LedgerHandler) GetAccountByID(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.GetAccountByID(r.Context(), accountID)
	if err != nil {
		h.writeError(w, "get account", err)
		return
	}
	services.WriteJSON(w, http.StatusOK, account)
}

// GetBalanceByID returns the balance of an account at a clock
// @Summary Get an account balance
// @Description Balance as of the given clock (URL-safe base64 vector). Without a clock the latest state is read.
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param accountId path int true "Account id"
// @Param clock query string false "Clock vector"
// @Success 200 {object} models.Balance
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 425 {object} services.ErrorResponse
// @Router /accounts/{accountId}/balance [get]
func (h *LedgerHandler) GetBalanceByID(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var clock models.Clock
	if raw := r.URL.Query().Get("clock"); raw != "" {
		vector, err := base64.URLEncoding.DecodeString(raw)
		if err != nil {
			services.SendErrorResponse(w, codeInvalidRequest, "clock must be URL-safe base64", http.StatusBadRequest, nil)
			return
		}
		clock.Vector = vector
	}

	balance, err := h.balances.GetBalanceByID(r.Context(), accountID, clock)
	if err != nil {
		h.writeError(w, "get balance", err)
		return
	}
	services.WriteJSON(w, http.StatusOK, balance)
}

// GetLatestClock returns the ledger high-water mark
// @Summary Latest clock
// @Tags clock
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ClockResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /clock/latest [get]
func (h *LedgerHandler) GetLatestClock(w http.ResponseWriter, r *http.Request) {
	clock, err := h.balances.LatestClock(r.Context())
	if err != nil {
		h.writeError(w, "latest clock", err)
		return
	}
	services.WriteJSON(w, http.StatusOK, ClockResponse{Clock: clock})
}

func (h *LedgerHandler) accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountId"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, codeInvalidRequest, "accountId must be an integer", http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}

func (h *LedgerHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, codeInvalidRequest, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, codeInvalidRequest, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}

const (
	codeInvalidRequest       = "invalid_request"
	codeInvalidPostingParams = "invalid_posting_params"
	codePostingsMismatch     = "postings_mismatch"
	codePlanNotFound         = "plan_not_found"
	codeAccountNotFound      = "account_not_found"
	codePlanFinalized        = "plan_finalized"
	codeClockNotVisible      = "clock_not_visible"
	codeServiceUnavailable   = "service_unavailable"
	codeInternal             = "internal_error"
)

// writeError maps each failure kind to its own status and code so callers can decide on
// retries without parsing messages.
func (h *LedgerHandler) writeError(w http.ResponseWriter, op string, err error) {
	var (
		status int
		code   string
	)
	switch {
	case errors.Is(err, services.ErrInvalidPostingParams):
		status, code = http.StatusUnprocessableEntity, codeInvalidPostingParams
	case errors.Is(err, services.ErrPlanNotFound):
		status, code = http.StatusNotFound, codePlanNotFound
	case errors.Is(err, services.ErrAccountNotFound):
		status, code = http.StatusNotFound, codeAccountNotFound
	case errors.Is(err, services.ErrPlanFinalized):
		status, code = http.StatusConflict, codePlanFinalized
	case errors.Is(err, services.ErrPostingsMismatch):
		status, code = http.StatusConflict, codePostingsMismatch
	case errors.Is(err, services.ErrClockNotVisible):
		status, code = http.StatusTooEarly, codeClockNotVisible
	case errors.Is(err, services.ErrInvalidRequest):
		status, code = http.StatusBadRequest, codeInvalidRequest
	case errors.Is(err, services.ErrStorageUnavailable):
		status, code = http.StatusServiceUnavailable, codeServiceUnavailable
	default:
		status, code = http.StatusInternalServerError, codeInternal
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("failed to "+op, zap.String("code", code), zap.Error(err))
		services.SendErrorResponse(w, code, "Failed to "+op, status, nil)
		return
	}

	h.logger.Info(op+" rejected", zap.String("code", code), zap.Error(err))
	services.SendErrorResponse(w, code, err.Error(), status, err)
}
