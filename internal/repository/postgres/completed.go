package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/repository"
)

const completedColumns = `id, vehicle_number, party_name, COALESCE(item, ''), COALESCE(transaction_type, ''),
	gross_wt, tare_wt, net_wt, image1, image2, date, created_at, completed_at, transporter_name, lr_number`

type completedRepository struct {
	db *sql.DB
}

func NewCompletedRepository(db *sql.DB) repository.CompletedRepository {
	return &completedRepository{db: db}
}

func scanCompleted(row rowScanner) (*domain.CompletedRecord, error) {
	rec := &domain.CompletedRecord{}
	var createdAt sql.NullTime
	err := row.Scan(
		&rec.ID, &rec.VehicleNumber, &rec.PartyName, &rec.Item, &rec.Kind,
		&rec.GrossWt, &rec.TareWt, &rec.NetWt, &rec.Image1, &rec.Image2, &rec.Date,
		&createdAt, &rec.CompletedAt, &rec.TransporterName, &rec.LRNumber,
	)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	return rec, nil
}

// Finalize moves a transaction from the in-flight store into the finalized store in a
// single database transaction. The insert only runs when the delete removed a row, so
// concurrent finalizations of the same id produce exactly one record.
func (r *completedRepository) Finalize(ctx context.Context, f *domain.Finalization) (*domain.CompletedRecord, error) {
	logger.EnterMethod("completedRepository.Finalize", "id", f.ID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("completedRepository.Finalize", err, "id", f.ID)
		return nil, err
	}
	defer tx.Rollback()

	rec := &domain.CompletedRecord{
		GrossWt:         f.GrossWt,
		TareWt:          f.TareWt,
		NetWt:           f.NetWt,
		Image2:          f.Image2,
		Date:            f.Date,
		CompletedAt:     f.CompletedAt,
		TransporterName: f.TransporterName,
		LRNumber:        f.LRNumber,
	}

	logger.DatabaseCall("DELETE", "pending_weights", "id", f.ID)
	err = tx.QueryRowContext(ctx,
		`DELETE FROM pending_weights WHERE id = $1
		 RETURNING id, vehicle_number, party_name, COALESCE(item, ''), transaction_type, image1, created_at`,
		f.ID,
	).Scan(&rec.ID, &rec.VehicleNumber, &rec.PartyName, &rec.Item, &rec.Kind, &rec.Image1, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("DELETE", 0, nil, "id", f.ID)
		logger.ExitMethod("completedRepository.Finalize", "id", f.ID, "finalized", false)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "id", f.ID)
		logger.ExitMethodWithError("completedRepository.Finalize", err, "id", f.ID)
		return nil, err
	}

	insert := `INSERT INTO completed_weights
		(id, vehicle_number, party_name, item, transaction_type, gross_wt, tare_wt, net_wt,
		 image1, image2, date, created_at, completed_at, transporter_name, lr_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	logger.DatabaseCall("INSERT", "completed_weights", "id", rec.ID)
	_, err = tx.ExecContext(ctx, insert,
		rec.ID, rec.VehicleNumber, rec.PartyName, rec.Item, rec.Kind, rec.GrossWt, rec.TareWt, rec.NetWt,
		rec.Image1, rec.Image2, rec.Date, rec.CreatedAt, rec.CompletedAt, rec.TransporterName, rec.LRNumber,
	)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "id", rec.ID)
		logger.ExitMethodWithError("completedRepository.Finalize", err, "id", f.ID)
		return nil, fmt.Errorf("failed to insert finalized record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("completedRepository.Finalize", err, "id", f.ID)
		return nil, fmt.Errorf("failed to commit finalization: %w", err)
	}

	logger.ExitMethod("completedRepository.Finalize", "id", rec.ID, "finalized", true)
	return rec, nil
}

// GetByID returns the most recently finalized record carrying serial id.
func (r *completedRepository) GetByID(ctx context.Context, id int64) (*domain.CompletedRecord, error) {
	query := `SELECT ` + completedColumns + ` FROM completed_weights WHERE id = $1 ORDER BY completed_at DESC LIMIT 1`
	rec, err := scanCompleted(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// ListByDate returns the finalized records of one calendar day, newest first.
func (r *completedRepository) ListByDate(ctx context.Context, date string) ([]domain.CompletedRecord, error) {
	query := `SELECT ` + completedColumns + ` FROM completed_weights WHERE date = $1 ORDER BY completed_at DESC, row_id DESC`
	logger.DatabaseCall("SELECT", "completed_weights", "date", date)

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "date", date)
		return nil, err
	}
	defer rows.Close()

	records := []domain.CompletedRecord{}
	for rows.Next() {
		rec, err := scanCompleted(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.DatabaseResult("SELECT", int64(len(records)), nil, "date", date)
	return records, nil
}

func (r *completedRepository) Search(ctx context.Context, token string) (*domain.CompletedRecord, error) {
	query := `SELECT ` + completedColumns + ` FROM completed_weights
	          WHERE id = $1 OR vehicle_number ILIKE $2
	          ORDER BY (id = $1) IS TRUE DESC, completed_at DESC
	          LIMIT 1`
	rec, err := scanCompleted(r.db.QueryRowContext(ctx, query, serialArg(token), likePattern(token)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// UpdatePrintDetails is the only mutation allowed on a finalized record.
func (r *completedRepository) UpdatePrintDetails(ctx context.Context, id int64, transporterName, lrNumber *string) (*domain.CompletedRecord, error) {
	logger.EnterMethod("completedRepository.UpdatePrintDetails", "id", id)

	query := `UPDATE completed_weights SET transporter_name = $1, lr_number = $2
	          WHERE row_id = (SELECT row_id FROM completed_weights WHERE id = $3 ORDER BY completed_at DESC LIMIT 1)
	          RETURNING ` + completedColumns
	rec, err := scanCompleted(r.db.QueryRowContext(ctx, query, transporterName, lrNumber, id))
	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethod("completedRepository.UpdatePrintDetails", "id", id, "updated", false)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		logger.ExitMethodWithError("completedRepository.UpdatePrintDetails", err, "id", id)
		return nil, err
	}

	logger.ExitMethod("completedRepository.UpdatePrintDetails", "id", id, "updated", true)
	return rec, nil
}

func (r *completedRepository) DeleteByDate(ctx context.Context, date string) (int64, error) {
	logger.DatabaseCall("DELETE", "completed_weights", "date", date)
	res, err := r.db.ExecContext(ctx, `DELETE FROM completed_weights WHERE date = $1`, date)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "date", date)
		return 0, err
	}
	rows, err := res.RowsAffected()
	logger.DatabaseResult("DELETE", rows, err, "date", date)
	return rows, err
}
