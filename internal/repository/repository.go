package repository

import (
	"context"
	"time"

	"weighbridge-server/internal/domain"
)

type PendingRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	List(ctx context.Context) ([]domain.Transaction, error)
	Search(ctx context.Context, token string) (*domain.Transaction, error)

	// Transition moves a transaction to status `to` only when its current status is one of `from`.
	// Returns false when the id is unknown or the guard did not match.
	Transition(ctx context.Context, id int64, to domain.Status, from []domain.Status, authorizedAt *time.Time) (bool, error)
	AuthorizeExit(ctx context.Context, id int64, at time.Time) (bool, error)
	RecordFirstWeight(ctx context.Context, id int64, grossWt, tareWt float64, image *string) (bool, error)
}

type CompletedRepository interface {
	// Finalize atomically removes the in-flight transaction and inserts its finalized record.
	// Returns domain.ErrNotFound when the transaction no longer exists.
	Finalize(ctx context.Context, f *domain.Finalization) (*domain.CompletedRecord, error)
	GetByID(ctx context.Context, id int64) (*domain.CompletedRecord, error)
	ListByDate(ctx context.Context, date string) ([]domain.CompletedRecord, error)
	Search(ctx context.Context, token string) (*domain.CompletedRecord, error)
	UpdatePrintDetails(ctx context.Context, id int64, transporterName, lrNumber *string) (*domain.CompletedRecord, error)
	DeleteByDate(ctx context.Context, date string) (int64, error)
}

type AdminRepository interface {
	// ResetSerials clears every in-flight transaction and restarts serial numbering at 1.
	ResetSerials(ctx context.Context) error
	Ping(ctx context.Context) error
}
