package purchase_test

import (
	"context"
	"testing"
	"time"

	"ms-cinema/internal/database/dbtest"
	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/purchase"
	"ms-cinema/internal/purchase/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func status(t *testing.T, bunDB *bun.DB, id int64) models.PurchaseStatus {
	var buy models.Buy
	require.NoError(t, bunDB.NewSelect().Model(&buy).Where("id = ?", id).Scan(context.Background()))
	return buy.Status
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	bunDB := dbtest.New(t)
	f := dbtest.Seed(t, bunDB)
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	_, past := f.AddShow(t, bunDB, now.Add(-26*time.Hour), now.Add(-24*time.Hour), 3)
	_, future := f.AddShow(t, bunDB, now.Add(2*time.Hour), now.Add(4*time.Hour), 1)

	finished := f.AddPurchase(t, bunDB, models.PurchaseValid, past[0])
	cancelled := f.AddPurchase(t, bunDB, models.PurchaseCancelled, past[1])
	upcoming := f.AddPurchase(t, bunDB, models.PurchaseValid, future[0])
	snackOnly := f.AddPurchase(t, bunDB, models.PurchaseValid)

	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, kafka.TopicPurchaseExpired, mock.Anything, mock.Anything).Return(nil).Once()
	sweeper := purchase.NewSweeper(db.New(bunDB), pub, logger.NewNop())

	n, err := sweeper.SweepExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = sweeper.SweepExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n, "a second sweep with the same now changes nothing")

	assert.Equal(t, models.PurchaseExpired, status(t, bunDB, finished.ID))
	assert.Equal(t, models.PurchaseCancelled, status(t, bunDB, cancelled.ID))
	assert.Equal(t, models.PurchaseValid, status(t, bunDB, upcoming.ID))
	assert.Equal(t, models.PurchaseValid, status(t, bunDB, snackOnly.ID))

	var seat models.Seat
	require.NoError(t, bunDB.NewSelect().Model(&seat).Where("id = ?", past[0].ID).Scan(context.Background()))
	assert.Equal(t, models.SeatOccupied, seat.Status, "sweeping never frees seats")

	pub.AssertExpectations(t)
}

func TestSweepExpiredBoundaryIsStrict(t *testing.T) {
	bunDB := dbtest.New(t)
	f := dbtest.Seed(t, bunDB)
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	_, seats := f.AddShow(t, bunDB, now.Add(-2*time.Hour), now, 1)
	buy := f.AddPurchase(t, bunDB, models.PurchaseValid, seats[0])

	sweeper := purchase.NewSweeper(db.New(bunDB), kafka.NopPublisher{}, logger.NewNop())
	n, err := sweeper.SweepExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n, "a show finishing exactly now has not finished before now")
	assert.Equal(t, models.PurchaseValid, status(t, bunDB, buy.ID))

	n, err = sweeper.SweepExpired(context.Background(), now.Add(900*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "a fraction of a second past the finish is already after it")
}
