package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.PendingRepository
	repository.CompletedRepository
	repository.AdminRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                  db,
		PendingRepository:   NewPendingRepository(db),
		CompletedRepository: NewCompletedRepository(db),
		AdminRepository:     NewAdminRepository(db),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// likePattern builds an ILIKE substring pattern with wildcards in token escaped.
func likePattern(token string) string {
	escaped := make([]rune, 0, len(token)+2)
	for _, r := range token {
		if r == '\\' || r == '%' || r == '_' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, r)
	}
	return "%" + string(escaped) + "%"
}

type adminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) repository.AdminRepository {
	return &adminRepository{db: db}
}

// ResetSerials empties the in-flight store and restarts its id sequence.
// Finalized records keep their serial numbers.
func (r *adminRepository) ResetSerials(ctx context.Context) error {
	logger.EnterMethod("adminRepository.ResetSerials")

	query := `TRUNCATE TABLE pending_weights RESTART IDENTITY`
	logger.DatabaseCall("TRUNCATE", "pending_weights")
	_, err := r.db.ExecContext(ctx, query)
	logger.DatabaseResult("TRUNCATE", 0, err)
	if err != nil {
		logger.ExitMethodWithError("adminRepository.ResetSerials", err)
		return err
	}

	logger.ExitMethod("adminRepository.ResetSerials")
	return nil
}

func (r *adminRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
