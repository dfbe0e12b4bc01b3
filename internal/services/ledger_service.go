package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ruralpay/ledger/internal/audit"
	"github.com/ruralpay/ledger/internal/models"
	"go.uber.org/zap"
)

const (
	holdNotFoundForPlan   = "Hold operation not found for plan: %s"
	planAlreadyFinalized  = "Plan (%s) is already in %s state"
	finalPostingsConflict = "Plan (%s) already has %s postings"
	batchAlreadyHeld      = "Batch (%d) of plan (%s) was already held with different postings"
)

// PostingPlanService runs the hold/commit/rollback state machine of a posting plan.
// Every mutating call runs in one database transaction over the posting log and plan log.
type PostingPlanService struct {
	store     *PlanStore
	validator *PostingBatchValidator
	events    PlanEventPublisher
	audit     *audit.AuditLogger
	logger    *zap.Logger
	now       func() time.Time
}

func NewPostingPlanService(store *PlanStore, validator *PostingBatchValidator, events PlanEventPublisher, logger *zap.Logger) *PostingPlanService {
	if events == nil {
		events = nopPlanEventPublisher{}
	}
	return &PostingPlanService{
		store:     store,
		validator: validator,
		events:    events,
		audit:     audit.NewAuditLogger(logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Hold appends the batch as HOLD postings and moves the plan to (or keeps it in) HOLD.
// Repeating an identical hold writes nothing new and returns the plan's current clock.
func (s *PostingPlanService) Hold(ctx context.Context, change models.PostingPlanChange) (models.Clock, error) {
	if err := ValidateHold(change); err != nil {
		return models.Clock{}, err
	}
	if err := s.validator.Validate(ctx, change.Batch, change.ID); err != nil {
		return models.Clock{}, err
	}
	batch := *change.Batch

	info, err := s.hold(ctx, change.ID, batch)
	if err != nil {
		s.audit.LogError(change.ID, string(models.OperationHold), err)
		return models.Clock{}, err
	}

	s.audit.LogOperation(change.ID, string(models.OperationHold), info.Clock, len(batch.Postings))
	s.publish(ctx, info, []int64{batch.ID})
	return models.NewClock(info.Clock), nil
}

func (s *PostingPlanService) hold(ctx context.Context, planID string, batch models.PostingBatch) (*models.PlanLogInfo, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entries := models.NewPostingLogEntries(planID, batch, models.OperationHold)
	clock, inserted, err := s.store.InsertPostings(ctx, tx, entries)
	if err != nil {
		return nil, err
	}

	if inserted < len(entries) {
		// part of the batch is already in the log: only an exact repeat is acceptable
		if inserted > 0 {
			return nil, invalidRequest(ErrPostingsMismatch, batchAlreadyHeld, batch.ID, planID)
		}
		stored, err := s.store.GetBatchPostings(ctx, tx, planID, batch.ID, models.OperationHold)
		if err != nil {
			return nil, err
		}
		if !samePostings(postingsOf(stored), batch.Postings) {
			return nil, invalidRequest(ErrPostingsMismatch, batchAlreadyHeld, batch.ID, planID)
		}
		for _, e := range stored {
			clock = max(clock, e.ID)
		}
		s.logger.Info("hold repeated for already held batch",
			zap.String("plan_id", planID), zap.Int64("batch_id", batch.ID))
	}

	info, err := s.store.AddOrUpdatePlanLog(ctx, tx, models.PlanLogInfo{
		PlanID:         planID,
		LastBatchID:    batch.ID,
		LastAccessTime: s.now().UTC(),
		LastOperation:  models.OperationHold,
		Clock:          clock,
	})
	if errors.Is(err, ErrPlanFinalized) {
		s.logger.Warn("hold rejected for finalized plan", zap.String("plan_id", planID))
		return nil, fmt.Errorf("hold plan %s: %w", planID, ErrPlanFinalized)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("commit hold", err)
	}
	return info, nil
}

// Commit confirms every held batch of the plan. The plan must match the held postings exactly.
func (s *PostingPlanService) Commit(ctx context.Context, plan models.PostingPlan) (models.Clock, error) {
	return s.finalize(ctx, plan, models.OperationCommit)
}

// Rollback voids every held batch of the plan. ROLLBACK rows stay in the log as an audit
// trail and never contribute to a balance.
func (s *PostingPlanService) Rollback(ctx context.Context, plan models.PostingPlan) (models.Clock, error) {
	return s.finalize(ctx, plan, models.OperationRollback)
}

func (s *PostingPlanService) finalize(ctx context.Context, plan models.PostingPlan, op models.PostingOperation) (models.Clock, error) {
	if err := ValidateFinalOp(plan); err != nil {
		return models.Clock{}, err
	}
	for i := range plan.BatchList {
		if err := s.validator.Validate(ctx, &plan.BatchList[i], plan.ID); err != nil {
			return models.Clock{}, err
		}
	}

	info, postings, err := s.finalizeTx(ctx, plan, op)
	if err != nil {
		s.audit.LogError(plan.ID, string(op), err)
		return models.Clock{}, err
	}

	batchIDs := make([]int64, 0, len(plan.BatchList))
	for _, batch := range plan.BatchList {
		batchIDs = append(batchIDs, batch.ID)
	}
	s.audit.LogOperation(plan.ID, string(op), info.Clock, postings)
	s.publish(ctx, info, batchIDs)
	return models.NewClock(info.Clock), nil
}

func (s *PostingPlanService) finalizeTx(ctx context.Context, plan models.PostingPlan, op models.PostingOperation) (*models.PlanLogInfo, int, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	current, err := s.store.SelectForUpdatePlanLog(ctx, tx, plan.ID)
	if errors.Is(err, ErrPlanNotFound) {
		return nil, 0, invalidRequest(ErrPlanNotFound, holdNotFoundForPlan, plan.ID)
	}
	if err != nil {
		return nil, 0, err
	}
	if current.LastOperation.IsFinal() {
		s.logger.Warn("final operation rejected for finalized plan",
			zap.String("plan_id", plan.ID),
			zap.String("operation", string(op)),
			zap.String("state", string(current.LastOperation)))
		return nil, 0, invalidRequest(ErrPlanFinalized, planAlreadyFinalized, plan.ID, current.LastOperation)
	}

	held, err := s.store.GetPostingLogs(ctx, tx, plan.ID, current.LastOperation)
	if err != nil {
		return nil, 0, err
	}
	if err := ValidatePostingsUpdate(plan, held); err != nil {
		s.logger.Warn("final operation does not match held postings",
			zap.String("plan_id", plan.ID), zap.Error(err))
		return nil, 0, err
	}

	var entries []models.PostingLogEntry
	for _, batch := range plan.BatchList {
		entries = append(entries, models.NewPostingLogEntries(plan.ID, batch, op)...)
	}
	clock, inserted, err := s.store.InsertPostings(ctx, tx, entries)
	if err != nil {
		return nil, 0, err
	}
	if inserted != len(entries) {
		return nil, 0, invalidRequest(ErrPostingsMismatch, finalPostingsConflict, plan.ID, op)
	}

	info, err := s.store.UpdatePlanLog(ctx, tx, models.PlanLogInfo{
		PlanID:         plan.ID,
		LastBatchID:    plan.BatchList[len(plan.BatchList)-1].ID,
		LastAccessTime: s.now().UTC(),
		LastOperation:  op,
		Clock:          clock,
	})
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, storageError("commit "+string(op), err)
	}
	return info, len(entries), nil
}

// GetPlan rebuilds the plan from the postings recorded under its current operation.
func (s *PostingPlanService) GetPlan(ctx context.Context, planID string) (*models.PostingPlan, error) {
	info, err := s.store.GetPlanLog(ctx, planID)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.GetPostingLogs(ctx, s.store.db, planID, info.LastOperation)
	if err != nil {
		return nil, err
	}

	order, batches := groupByBatch(entries)
	plan := &models.PostingPlan{ID: planID, BatchList: make([]models.PostingBatch, 0, len(order))}
	for _, batchID := range order {
		plan.BatchList = append(plan.BatchList, models.PostingBatch{
			ID:       batchID,
			Postings: postingsOf(sortByPostingIndex(batches[batchID])),
		})
	}
	return plan, nil
}

func (s *PostingPlanService) publish(ctx context.Context, info *models.PlanLogInfo, batchIDs []int64) {
	event := PlanEvent{
		PlanID:     info.PlanID,
		Operation:  info.LastOperation,
		BatchIDs:   batchIDs,
		Clock:      info.Clock,
		OccurredAt: info.LastAccessTime,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish plan event",
			zap.String("plan_id", info.PlanID),
			zap.String("operation", string(info.LastOperation)),
			zap.Error(err))
	}
}
