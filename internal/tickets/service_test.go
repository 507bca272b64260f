package tickets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ms-cinema/internal/database/dbtest"
	"ms-cinema/internal/errs"
	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/purchase"
	purchasedb "ms-cinema/internal/purchase/db"
	"ms-cinema/internal/tickets"
	"ms-cinema/internal/tickets/db"
	qr "ms-cinema/internal/tickets/qr_generator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPurchaseLookup is a mock implementation of the PurchaseLookup interface
type MockPurchaseLookup struct {
	mock.Mock
}

func (m *MockPurchaseLookup) GetPurchase(ctx context.Context, id int64) (*models.Buy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Buy), args.Error(1)
}

// MockSweeper is a mock implementation of the Sweeper interface
type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

var now = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

func newService(lookup tickets.PurchaseLookup, sweeper tickets.Sweeper) *tickets.TicketService {
	gen := qr.NewQRGenerator("s3cret", time.Hour).WithClock(func() time.Time { return now })
	svc := tickets.NewTicketService(gen, lookup, sweeper, nil, logger.NewNop())
	svc.Clock = func() time.Time { return now }
	return svc
}

func TestIssueQRRequiresPurchase(t *testing.T) {
	lookup := new(MockPurchaseLookup)
	lookup.On("GetPurchase", mock.Anything, int64(9)).Return(nil, errs.NotFound("purchase 9 not found"))

	_, err := newService(lookup, nil).IssueQR(context.Background(), 9)

	assert.True(t, errs.IsKind(err, errs.KindNotFound))
	lookup.AssertExpectations(t)
}

func TestValidateQRRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		status  models.PurchaseStatus
		wantErr error
	}{
		{"valid", models.PurchaseValid, nil},
		{"expired still validates", models.PurchaseExpired, nil},
		{"cancelled", models.PurchaseCancelled, tickets.ErrCancelledPurchase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(MockPurchaseLookup)
			lookup.On("GetPurchase", mock.Anything, int64(42)).Return(&models.Buy{ID: 42, Status: tt.status}, nil)
			sweeper := new(MockSweeper)
			sweeper.On("SweepExpired", mock.Anything, now).Return(int64(0), nil).Once()
			svc := newService(lookup, sweeper)

			issued, err := svc.IssueQR(context.Background(), 42)
			require.NoError(t, err)
			assert.Contains(t, issued.QRCodeURL, "data:image/png;base64,")

			buy, err := svc.ValidateQR(context.Background(), issued.Token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, buy)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(42), buy.ID)
			}
			sweeper.AssertExpectations(t)
		})
	}
}

func TestValidateQRInvalidTokenSkipsLookup(t *testing.T) {
	lookup := new(MockPurchaseLookup)
	sweeper := new(MockSweeper)

	_, err := newService(lookup, sweeper).ValidateQR(context.Background(), "not-a-token")

	assert.ErrorIs(t, err, qr.ErrInvalidToken)
	lookup.AssertNotCalled(t, "GetPurchase", mock.Anything, mock.Anything)
	sweeper.AssertNotCalled(t, "SweepExpired", mock.Anything, mock.Anything)
}

func TestValidateQRMissingPurchase(t *testing.T) {
	lookup := new(MockPurchaseLookup)
	lookup.On("GetPurchase", mock.Anything, int64(7)).Return(nil, errs.NotFound("purchase 7 not found"))
	sweeper := new(MockSweeper)
	sweeper.On("SweepExpired", mock.Anything, now).Return(int64(0), nil)
	svc := newService(lookup, sweeper)

	token, err := svc.QR.Issue(7)
	require.NoError(t, err)

	_, err = svc.ValidateQR(context.Background(), token)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestValidateQRContinuesWhenSweepFails(t *testing.T) {
	lookup := new(MockPurchaseLookup)
	lookup.On("GetPurchase", mock.Anything, int64(3)).Return(&models.Buy{ID: 3, Status: models.PurchaseValid}, nil)
	sweeper := new(MockSweeper)
	sweeper.On("SweepExpired", mock.Anything, now).Return(int64(0), errors.New("db down"))
	svc := newService(lookup, sweeper)

	token, err := svc.QR.Issue(3)
	require.NoError(t, err)

	buy, err := svc.ValidateQR(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), buy.ID)
}

func TestValidateQRExpiresFinishedShowFirst(t *testing.T) {
	bunDB := dbtest.New(t)
	f := dbtest.Seed(t, bunDB)
	_, seats := f.AddShow(t, bunDB, now.Add(-26*time.Hour), now.Add(-24*time.Hour), 1)
	buy := f.AddPurchase(t, bunDB, models.PurchaseValid, seats[0])

	store := purchasedb.New(bunDB)
	purchases := purchase.NewPurchaseService(store, nil, kafka.NopPublisher{}, logger.NewNop())
	sweeper := purchase.NewSweeper(store, kafka.NopPublisher{}, logger.NewNop())
	svc := newService(purchases, sweeper)

	token, err := svc.QR.Issue(buy.ID)
	require.NoError(t, err)

	validated, err := svc.ValidateQR(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseExpired, validated.Status)
	require.Len(t, validated.Tickets, 1)
	assert.Equal(t, seats[0].ID, validated.Tickets[0].SeatID)
}

func TestGetShowOccupancy(t *testing.T) {
	bunDB := dbtest.New(t)
	f := dbtest.Seed(t, bunDB)
	show, seats := f.AddShow(t, bunDB, now.Add(time.Hour), now.Add(3*time.Hour), 4)
	f.AddPurchase(t, bunDB, models.PurchaseValid, seats[0], seats[1])
	f.AddPurchase(t, bunDB, models.PurchaseCancelled, seats[2])

	svc := tickets.NewTicketService(qr.NewQRGenerator("s3cret", time.Hour), nil, nil, db.New(bunDB), logger.NewNop())

	occupancy, err := svc.GetShowOccupancy(context.Background(), show.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, occupancy.Seats)
	assert.Equal(t, 3, occupancy.OccupiedSeats)
	assert.Equal(t, 2, occupancy.Tickets[models.PurchaseValid])
	assert.Equal(t, 1, occupancy.Tickets[models.PurchaseCancelled])

	_, err = svc.GetShowOccupancy(context.Background(), show.ID+100)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}
