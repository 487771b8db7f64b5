package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/repository/postgres"
)

var pendingCols = []string{"id", "vehicle_number", "party_name", "item", "transaction_type", "status",
	"exit_authorized", "exit_authorized_at", "gross_wt", "tare_wt", "image1", "created_at", "authorized_at"}

func TestPendingRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewPendingRepository(db)
	ctx := context.Background()
	now := time.Now()

	tx := &domain.Transaction{
		VehicleNumber: "MH12AB1234",
		PartyName:     "Acme",
		Item:          "Coal",
		Kind:          domain.KindLoading,
		Status:        domain.StatusAtGate,
		CreatedAt:     now,
	}
	mock.ExpectQuery("INSERT INTO pending_weights").
		WithArgs("MH12AB1234", "Acme", "Coal", domain.KindLoading, domain.StatusAtGate, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	err = repo.Create(ctx, tx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), tx.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewPendingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(pendingCols).
			AddRow(7, "KA01", "Party", "", "UNLOADING", "ON_SCALE", false, nil, 0.0, 0.0, nil, time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM pending_weights WHERE id = \\$1").
			WithArgs(int64(7)).
			WillReturnRows(rows)

		tx, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOnScale, tx.Status)
		assert.Equal(t, domain.KindUnloading, tx.Kind)
		assert.NotNil(t, tx.AuthorizedAt)
		assert.Nil(t, tx.Image1)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM pending_weights WHERE id = \\$1").
			WithArgs(int64(8)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 8)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPendingRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewPendingRepository(db)

	img := "img_1st_2_x.jpg"
	rows := sqlmock.NewRows(pendingCols).
		AddRow(2, "KA02", "B", "Sand", "LOADING", "FIRST_WEIGHT_DONE", true, time.Now(), 15000.0, 0.0, img, time.Now(), nil).
		AddRow(1, "KA01", "A", "", "LOADING", "AT_GATE", false, nil, 0.0, 0.0, nil, time.Now(), nil)
	mock.ExpectQuery("SELECT (.+) FROM pending_weights ORDER BY created_at DESC, id DESC").WillReturnRows(rows)

	txs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(2), txs[0].ID)
	assert.True(t, txs[0].ExitAuthorized)
	assert.Equal(t, img, *txs[0].Image1)
	assert.Equal(t, 15000.0, txs[0].GrossWt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingRepository_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewPendingRepository(db)
	ctx := context.Background()

	t.Run("NumericToken", func(t *testing.T) {
		rows := sqlmock.NewRows(pendingCols).
			AddRow(12, "KA12", "A", "", "LOADING", "AT_GATE", false, nil, 0.0, 0.0, nil, time.Now(), nil)
		mock.ExpectQuery("SELECT (.+) FROM pending_weights WHERE id = \\$1 OR vehicle_number ILIKE \\$2").
			WithArgs(sql.NullInt64{Int64: 12, Valid: true}, "%12%").
			WillReturnRows(rows)

		tx, err := repo.Search(ctx, "12")
		require.NoError(t, err)
		assert.Equal(t, int64(12), tx.ID)
	})

	t.Run("VehicleTokenEscapesWildcards", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM pending_weights WHERE id = \\$1 OR vehicle_number ILIKE \\$2").
			WithArgs(sql.NullInt64{}, "%mh\\_12%").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Search(ctx, "mh_12")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingRepository_Transition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewPendingRepository(db)
	ctx := context.Background()
	from := []domain.Status{domain.StatusAtGate, domain.StatusAuthorized}

	t.Run("Applied", func(t *testing.T) {
		mock.ExpectExec("UPDATE pending_weights SET status = \\$1").
			WithArgs(domain.StatusOnScale, nil, int64(3), pq.Array([]string{"AT_GATE", "AUTHORIZED"})).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Transition(ctx, 3, domain.StatusOnScale, from, nil)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("GuardDidNotMatch", func(t *testing.T) {
		mock.ExpectExec("UPDATE pending_weights SET status = \\$1").
			WithArgs(domain.StatusOnScale, nil, int64(3), pq.Array([]string{"AT_GATE", "AUTHORIZED"})).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Transition(ctx, 3, domain.StatusOnScale, from, nil)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingRepository_Updates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewPendingRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("AuthorizeExit", func(t *testing.T) {
		mock.ExpectExec("UPDATE pending_weights SET exit_authorized = TRUE").
			WithArgs(now, int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.AuthorizeExit(ctx, 4, now)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("RecordFirstWeight", func(t *testing.T) {
		img := "img_1st_4_a.png"
		mock.ExpectExec("UPDATE pending_weights SET gross_wt = \\$1, tare_wt = \\$2, image1 = \\$3, status = \\$4").
			WithArgs(15200.0, 0.0, &img, domain.StatusFirstWeightDone, int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.RecordFirstWeight(ctx, 4, 15200, 0, &img)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("RecordFirstWeightUnknownID", func(t *testing.T) {
		mock.ExpectExec("UPDATE pending_weights SET gross_wt").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.RecordFirstWeight(ctx, 99, 1, 0, nil)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
