package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/repository/postgres"
)

var completedCols = []string{"id", "vehicle_number", "party_name", "item", "transaction_type",
	"gross_wt", "tare_wt", "net_wt", "image1", "image2", "date", "created_at", "completed_at", "transporter_name", "lr_number"}

func TestCompletedRepository_Finalize(t *testing.T) {
	created := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	image2 := "img_2nd_4_b.jpg"
	fin := &domain.Finalization{
		ID:          4,
		GrossWt:     15200,
		TareWt:      7000,
		NetWt:       8200,
		Image2:      &image2,
		Date:        "2026-03-14",
		CompletedAt: completed,
	}
	deleteQuery := "DELETE FROM pending_weights WHERE id = \\$1 RETURNING"

	t.Run("MovesRecord", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewCompletedRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(deleteQuery).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_number", "party_name", "item", "transaction_type", "image1", "created_at"}).
				AddRow(4, "MH12AB1234", "Acme", "Coal", "LOADING", "img_1st_4_a.jpg", created))
		mock.ExpectExec("INSERT INTO completed_weights").
			WithArgs(int64(4), "MH12AB1234", "Acme", "Coal", domain.KindLoading, 15200.0, 7000.0, 8200.0,
				"img_1st_4_a.jpg", image2, "2026-03-14", created, completed, nil, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		rec, err := repo.Finalize(context.Background(), fin)
		require.NoError(t, err)
		assert.Equal(t, int64(4), rec.ID)
		assert.Equal(t, "MH12AB1234", rec.VehicleNumber)
		assert.Equal(t, 8200.0, rec.NetWt)
		assert.Equal(t, "img_1st_4_a.jpg", *rec.Image1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyFinalized", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewCompletedRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(deleteQuery).WithArgs(int64(4)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err = repo.Finalize(context.Background(), fin)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewCompletedRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(deleteQuery).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_number", "party_name", "item", "transaction_type", "image1", "created_at"}).
				AddRow(4, "MH12AB1234", "Acme", "", "LOADING", nil, created))
		mock.ExpectExec("INSERT INTO completed_weights").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		_, err = repo.Finalize(context.Background(), fin)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompletedRepository_ListByDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewCompletedRepository(db)
	lr := "LR-1"
	rows := sqlmock.NewRows(completedCols).
		AddRow(5, "KA05", "B", "", "UNLOADING", 9000.0, 4000.0, 5000.0, nil, nil, "2026-03-14", nil, time.Now(), nil, lr).
		AddRow(4, "KA04", "A", "Coal", "LOADING", 15200.0, 7000.0, 8200.0, "a.jpg", "b.jpg", "2026-03-14", time.Now(), time.Now(), "Fast", nil)
	mock.ExpectQuery("SELECT (.+) FROM completed_weights WHERE date = \\$1 ORDER BY completed_at DESC").
		WithArgs("2026-03-14").
		WillReturnRows(rows)

	recs, err := repo.ListByDate(context.Background(), "2026-03-14")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].CreatedAt.IsZero())
	assert.Equal(t, lr, *recs[0].LRNumber)
	assert.Nil(t, recs[0].TransporterName)
	assert.Equal(t, "Fast", *recs[1].TransporterName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletedRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewCompletedRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM completed_weights WHERE id = \\$1 ORDER BY completed_at DESC LIMIT 1").
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompletedRepository_UpdatePrintDetails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewCompletedRepository(db)
	ctx := context.Background()
	transporter := "Fast Freight"

	t.Run("UpdatesNewest", func(t *testing.T) {
		rows := sqlmock.NewRows(completedCols).
			AddRow(4, "KA04", "A", "", "LOADING", 15200.0, 7000.0, 8200.0, nil, nil, "2026-03-14", time.Now(), time.Now(), transporter, nil)
		mock.ExpectQuery("UPDATE completed_weights SET transporter_name = \\$1, lr_number = \\$2").
			WithArgs(&transporter, nil, int64(4)).
			WillReturnRows(rows)

		rec, err := repo.UpdatePrintDetails(ctx, 4, &transporter, nil)
		require.NoError(t, err)
		assert.Equal(t, transporter, *rec.TransporterName)
		assert.Equal(t, 8200.0, rec.NetWt)
	})

	t.Run("Unknown", func(t *testing.T) {
		mock.ExpectQuery("UPDATE completed_weights SET transporter_name").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdatePrintDetails(ctx, 44, &transporter, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletedRepository_DeleteByDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewCompletedRepository(db)
	mock.ExpectExec("DELETE FROM completed_weights WHERE date = \\$1").
		WithArgs("2026-03-01").
		WillReturnResult(sqlmock.NewResult(0, 6))

	n, err := repo.DeleteByDate(context.Background(), "2026-03-01")
	assert.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
