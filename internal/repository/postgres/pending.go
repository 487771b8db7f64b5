package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/lib/pq"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/repository"
)

const pendingColumns = `id, vehicle_number, party_name, COALESCE(item, ''), transaction_type, status,
	exit_authorized, exit_authorized_at, gross_wt, tare_wt, image1, created_at, authorized_at`

type pendingRepository struct {
	db *sql.DB
}

func NewPendingRepository(db *sql.DB) repository.PendingRepository {
	return &pendingRepository{db: db}
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	err := row.Scan(
		&tx.ID, &tx.VehicleNumber, &tx.PartyName, &tx.Item, &tx.Kind, &tx.Status,
		&tx.ExitAuthorized, &tx.ExitAuthorizedAt, &tx.GrossWt, &tx.TareWt, &tx.Image1, &tx.CreatedAt, &tx.AuthorizedAt,
	)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *pendingRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	logger.EnterMethod("pendingRepository.Create", "vehicle", tx.VehicleNumber)

	query := `INSERT INTO pending_weights (vehicle_number, party_name, item, transaction_type, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, tx.VehicleNumber, tx.PartyName, tx.Item, tx.Kind, tx.Status, tx.CreatedAt).Scan(&tx.ID)
	if err != nil {
		logger.ExitMethodWithError("pendingRepository.Create", err, "vehicle", tx.VehicleNumber)
		return err
	}

	logger.ExitMethod("pendingRepository.Create", "id", tx.ID)
	return nil
}

func (r *pendingRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_weights WHERE id = $1`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return tx, err
}

// List returns every in-flight transaction, newest first.
func (r *pendingRepository) List(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_weights ORDER BY created_at DESC, id DESC`
	logger.DatabaseCall("SELECT", "pending_weights")

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.DatabaseResult("SELECT", int64(len(txs)), nil)
	return txs, nil
}

// Search matches token as an exact id or as a case-insensitive vehicle number substring.
// An exact id match wins over a vehicle match.
func (r *pendingRepository) Search(ctx context.Context, token string) (*domain.Transaction, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_weights
	          WHERE id = $1 OR vehicle_number ILIKE $2
	          ORDER BY (id = $1) IS TRUE DESC, created_at DESC
	          LIMIT 1`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, serialArg(token), likePattern(token)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return tx, err
}

func (r *pendingRepository) Transition(ctx context.Context, id int64, to domain.Status, from []domain.Status, authorizedAt *time.Time) (bool, error) {
	logger.EnterMethod("pendingRepository.Transition", "id", id, "to", to)

	query := `UPDATE pending_weights SET status = $1, authorized_at = COALESCE($2, authorized_at)
	          WHERE id = $3 AND status = ANY($4)`
	res, err := r.db.ExecContext(ctx, query, to, authorizedAt, id, pq.Array(statusStrings(from)))
	if err != nil {
		logger.ExitMethodWithError("pendingRepository.Transition", err, "id", id)
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	logger.ExitMethod("pendingRepository.Transition", "id", id, "applied", rows > 0)
	return rows > 0, nil
}

func (r *pendingRepository) AuthorizeExit(ctx context.Context, id int64, at time.Time) (bool, error) {
	query := `UPDATE pending_weights SET exit_authorized = TRUE, exit_authorized_at = $1 WHERE id = $2`
	return r.execAffecting(ctx, "pendingRepository.AuthorizeExit", query, at, id)
}

// RecordFirstWeight stores the first capture. Re-capture overwrites earlier values.
func (r *pendingRepository) RecordFirstWeight(ctx context.Context, id int64, grossWt, tareWt float64, image *string) (bool, error) {
	query := `UPDATE pending_weights SET gross_wt = $1, tare_wt = $2, image1 = $3, status = $4 WHERE id = $5`
	return r.execAffecting(ctx, "pendingRepository.RecordFirstWeight", query, grossWt, tareWt, image, domain.StatusFirstWeightDone, id)
}

func (r *pendingRepository) execAffecting(ctx context.Context, method, query string, args ...any) (bool, error) {
	logger.EnterMethod(method)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError(method, err)
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	logger.ExitMethod(method, "rows_affected", rows)
	return rows > 0, nil
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// serialArg returns token as an id parameter, or NULL when it is not an integer.
func serialArg(token string) sql.NullInt64 {
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
