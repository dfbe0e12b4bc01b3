package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ruralpay/ledger/internal/models"
)

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidPostingParams = errors.New("invalid posting params")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPostingsMismatch     = errors.New("postings do not match held postings")
	ErrPlanFinalized        = errors.New("plan already finalized")
	ErrAccountNotFound      = errors.New("account not found")
	ErrClockNotVisible      = errors.New("clock not yet visible")
	ErrStorageUnavailable   = errors.New("storage unavailable")
)

// InvalidRequestError is a structural or state-conflict failure naming the offending plan or batch.
type InvalidRequestError struct {
	Kind     error
	Messages []string
}

func invalidRequest(kind error, format string, args ...any) *InvalidRequestError {
	return &InvalidRequestError{Kind: kind, Messages: []string{fmt.Sprintf(format, args...)}}
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(e.Messages, "; "))
}

func (e *InvalidRequestError) Unwrap() error {
	return e.Kind
}

type PostingViolation struct {
	Index   int            `json:"index"`
	Posting models.Posting `json:"posting"`
	Message string         `json:"message"`
}

// InvalidPostingParamsError lists every offending posting of a batch.
type InvalidPostingParamsError struct {
	PlanID     string             `json:"planId"`
	BatchID    int64              `json:"batchId"`
	Violations []PostingViolation `json:"violations"`
}

func (e *InvalidPostingParamsError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("posting #%d: %s", v.Index, v.Message))
	}
	return fmt.Sprintf("%v: plan %s batch %d: %s", ErrInvalidPostingParams, e.PlanID, e.BatchID, strings.Join(parts, ", "))
}

func (e *InvalidPostingParamsError) Unwrap() error {
	return ErrInvalidPostingParams
}

// StorageError wraps a driver failure. errors.Is(err, ErrStorageUnavailable) holds for it.
type StorageError struct {
	Op  string
	Err error
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}
