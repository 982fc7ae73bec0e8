package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goldfolio/goldfolio-api/models"
	"github.com/goldfolio/goldfolio-api/repository"
	testingutil "github.com/goldfolio/goldfolio-api/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTestDB runs fn against a fresh database and skips when no server is reachable
func withTestDB(t *testing.T, fn func(*testingutil.TestDB)) {
	t.Helper()
	err := testingutil.TestWithDB(func(db *testingutil.TestDB) error {
		fn(db)
		return nil
	})
	if errors.Is(err, testingutil.ErrTestDBUnavailable) {
		t.Skip("PostgreSQL not available: ", err)
	}
	require.NoError(t, err)
}

func TestPortfolioLotRepository(t *testing.T) {
	withTestDB(t, func(db *testingutil.TestDB) {
		ctx := testingutil.CreateTestContext()
		repo := repository.NewPortfolioLotRepository(db.DB)

		t.Run("SaveAndByUUID", func(t *testing.T) {
			lot := testingutil.NewLot("owner-save", 10, "2024-01-15", 9_000_000)
			require.NoError(t, repo.Save(ctx, lot))
			assert.NotZero(t, lot.ID)

			found, err := repo.ByUUID(ctx, lot.UUID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "owner-save", found.OwnerID)
			assert.Equal(t, 10.0, found.GoldWeight)
			assert.Equal(t, "2024-01-15", found.GoldBuyingDate.Format("2006-01-02"))
			assert.True(t, lot.CreatedAt.Equal(found.CreatedAt))
			assert.True(t, found.CreatedAt.Equal(found.UpdatedAt))

			missing, err := repo.ByUUID(ctx, uuid.New())
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("ListAndCountByOwner", func(t *testing.T) {
			require.NoError(t, db.ClearAllTables())
			fixtures := testingutil.NewTestFixtures(db)
			_, err := fixtures.CreateTestLot("owner-a", 1, "2024-01-01", 1_000_000)
			require.NoError(t, err)
			_, err = fixtures.CreateTestLot("owner-a", 2, "2024-01-02", 2_000_000)
			require.NoError(t, err)
			_, err = fixtures.CreateTestLot("owner-b", 3, "2024-01-03", 3_000_000)
			require.NoError(t, err)

			lots, err := repo.ListByOwner(ctx, "owner-a")
			require.NoError(t, err)
			require.Len(t, lots, 2)
			for _, l := range lots {
				assert.Equal(t, "owner-a", l.OwnerID)
			}

			count, err := repo.CountByOwner(ctx, "owner-a")
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			count, err = repo.CountByOwner(ctx, "nobody")
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("Update", func(t *testing.T) {
			lot := testingutil.NewLot("owner-update", 1, "2024-01-01", 1_000_000)
			require.NoError(t, repo.Save(ctx, lot))

			lot.GoldWeight = 5
			lot.UpdatedAt = lot.CreatedAt.Add(time.Second)
			require.NoError(t, repo.Update(ctx, lot))

			found, err := repo.ByUUID(ctx, lot.UUID)
			require.NoError(t, err)
			assert.Equal(t, 5.0, found.GoldWeight)
			assert.True(t, found.UpdatedAt.After(found.CreatedAt))

			err = repo.Update(ctx, &models.PortfolioLot{ID: 999999})
			assert.ErrorIs(t, err, repository.ErrNoRowsAffected)
		})

		t.Run("Delete", func(t *testing.T) {
			lot := testingutil.NewLot("owner-delete", 1, "2024-01-01", 1_000_000)
			require.NoError(t, repo.Save(ctx, lot))
			require.NoError(t, repo.Delete(ctx, lot.ID))

			found, err := repo.ByUUID(ctx, lot.UUID)
			require.NoError(t, err)
			assert.Nil(t, found)

			assert.ErrorIs(t, repo.Delete(ctx, lot.ID), repository.ErrNoRowsAffected)
		})

		t.Run("Transaction", func(t *testing.T) {
			tx := db.DB.Begin()
			txCtx := context.WithValue(ctx, repository.TxContextKey, tx)

			lot := testingutil.NewLot("owner-tx", 1, "2024-01-01", 1_000_000)
			require.NoError(t, repo.Save(txCtx, lot))
			require.NoError(t, tx.Rollback().Error)

			found, err := repo.ByUUID(ctx, lot.UUID)
			require.NoError(t, err)
			assert.Nil(t, found)
		})
	})
}

func TestPriceSnapshotRepository(t *testing.T) {
	withTestDB(t, func(db *testingutil.TestDB) {
		ctx := testingutil.CreateTestContext()
		repo := repository.NewPriceSnapshotRepository(db.DB)
		fixtures := testingutil.NewTestFixtures(db)
		base := time.Date(2024, 5, 31, 1, 0, 0, 0, time.UTC)

		t.Run("LatestCreatedWins", func(t *testing.T) {
			_, err := fixtures.CreateTestSnapshot("2024-05-31", "1.100.000", base)
			require.NoError(t, err)
			_, err = fixtures.CreateTestSnapshot("2024-05-31", "1.200.000", base.Add(time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestSnapshot("2024-05-30", "1.300.000", base.Add(2*time.Hour))
			require.NoError(t, err)

			latest, err := repo.LatestByPriceDate(ctx, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			require.NotNil(t, latest)
			assert.Equal(t, "1.200.000", latest.GoldSellingPrice)
			assert.True(t, testingutil.SamplePricePoints().Equal(latest.GoldBuyingPrice))
		})

		t.Run("Missing", func(t *testing.T) {
			latest, err := repo.LatestByPriceDate(ctx, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			assert.Nil(t, latest)
		})

		t.Run("ListDates", func(t *testing.T) {
			dates, err := repo.ListDates(ctx,
				time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			require.Len(t, dates, 2)
			assert.Equal(t, "2024-05-30", dates[0].Format("2006-01-02"))
			assert.Equal(t, "2024-05-31", dates[1].Format("2006-01-02"))
		})
	})
}
