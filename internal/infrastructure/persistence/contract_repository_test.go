package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mangodeliveries/backend/internal/domain/contract"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockContractRepo(t *testing.T) (*GormContractRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormContractRepository(gormDB), mock, mockDB
}

func testContract(t *testing.T) *contract.Contract {
	t.Helper()
	c, err := contract.NewContract(
		"https://esi.contract/123",
		"O3L-95",
		decimal.NewFromInt(100_000_000),
		decimal.NewFromInt(113_000_000),
		50_000,
		1,
		90_000_001,
		"Member Mel",
	)
	require.NoError(t, err)
	c.ID = 42
	return c
}

func TestCompareAndSwap(t *testing.T) {
	t.Run("updates when stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepo(t)
		defer mockDB.Close()

		c := testContract(t)
		require.NoError(t, c.Accept())

		mock.ExpectExec(`UPDATE "contracts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.CompareAndSwap(context.Background(), c, 1)

		require.NoError(t, err)
		assert.Equal(t, 2, c.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflicts when another writer won", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepo(t)
		defer mockDB.Close()

		c := testContract(t)
		require.NoError(t, c.Accept())

		// Zero rows: the WHERE id AND version clause matched nothing.
		mock.ExpectExec(`UPDATE "contracts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.CompareAndSwap(context.Background(), c, 1)

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "CONCURRENT_MODIFICATION"))
		assert.Contains(t, err.Error(), "Contract #42")
		// The in-memory version rolls back to the caller's expectation.
		assert.Equal(t, 1, c.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepo(t)
		defer mockDB.Close()

		c := testContract(t)
		require.NoError(t, c.Accept())

		mock.ExpectExec(`UPDATE "contracts" SET`).
			WillReturnError(assert.AnError)

		err := repo.CompareAndSwap(context.Background(), c, 1)

		require.Error(t, err)
		assert.False(t, shared.IsCode(err, "CONCURRENT_MODIFICATION"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, mockDB := newMockContractRepo(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT .* FROM "contracts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), 99)

	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "NOT_FOUND"))
}

func TestFindByStatus(t *testing.T) {
	repo, mock, mockDB := newMockContractRepo(t)
	defer mockDB.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "status", "submitter_id", "submitted_at", "version"}).
		AddRow(2, "pending", 7, now, 1).
		AddRow(1, "pending", 8, now.Add(-time.Hour), 1)

	mock.ExpectQuery(`SELECT .* FROM "contracts" WHERE status IN .* ORDER BY submitted_at DESC`).
		WillReturnRows(rows)

	contracts, err := repo.FindByStatus(context.Background(), []contract.Status{contract.StatusPending}, 0)

	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, int64(2), contracts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
