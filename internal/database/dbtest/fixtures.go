package dbtest

import (
	"context"
	"testing"
	"time"

	"ms-cinema/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// Fixtures is a small catalog: one client, one movie with one format and one
// language, two cinemas with a theater each, one snack and one promotion.
type Fixtures struct {
	User      *models.User
	Movie     *models.Movie
	Format    *models.Format
	Language  *models.Language
	Cinemas   []*models.Cinema
	Theaters  []*models.Theater
	Snack     *models.Snack
	Promotion *models.Promotion
}

func insert(t *testing.T, db bun.IDB, model interface{}) {
	t.Helper()
	_, err := db.NewInsert().Model(model).Exec(context.Background())
	require.NoError(t, err)
}

// Seed inserts the base catalog.
func Seed(t *testing.T, db bun.IDB) *Fixtures {
	t.Helper()

	f := &Fixtures{
		User:      &models.User{Email: "client@cinema.test", FullName: "Test Client", PasswordHash: "x", Role: models.RoleClient},
		Movie:     &models.Movie{Title: "Metropolis", DurationMinutes: 120},
		Format:    &models.Format{Name: "2D"},
		Language:  &models.Language{Name: "English"},
		Snack:     &models.Snack{Name: "Popcorn", Price: 5.5},
		Promotion: &models.Promotion{Code: "COMBO1", Description: "Popcorn and soda", Price: 8},
	}
	insert(t, db, f.User)
	insert(t, db, f.Movie)
	insert(t, db, f.Format)
	insert(t, db, f.Language)
	insert(t, db, f.Snack)
	insert(t, db, f.Promotion)
	insert(t, db, &models.MovieFormat{MovieID: f.Movie.ID, FormatID: f.Format.ID})
	insert(t, db, &models.MovieLanguage{MovieID: f.Movie.ID, LanguageID: f.Language.ID})

	for _, name := range []string{"C1", "C2"} {
		c := &models.Cinema{Name: name}
		insert(t, db, c)
		th := &models.Theater{Name: name + "-T1", CinemaID: c.ID, Capacity: 5}
		insert(t, db, th)
		f.Cinemas = append(f.Cinemas, c)
		f.Theaters = append(f.Theaters, th)
	}
	return f
}

// AddShow inserts a show in the first theater with seats 1..n, all Available.
func (f *Fixtures) AddShow(t *testing.T, db bun.IDB, start, finish time.Time, n int) (*models.Show, []*models.Seat) {
	t.Helper()

	show := &models.Show{
		StartTime:  start.UTC().Truncate(time.Second),
		FinishTime: finish.UTC().Truncate(time.Second),
		TheaterID:  f.Theaters[0].ID,
		MovieID:    f.Movie.ID,
		FormatID:   f.Format.ID,
		LanguageID: f.Language.ID,
	}
	insert(t, db, show)

	seats := make([]*models.Seat, 0, n)
	for i := 1; i <= n; i++ {
		seat := &models.Seat{Number: i, Status: models.SeatAvailable, ShowID: show.ID}
		insert(t, db, seat)
		seats = append(seats, seat)
	}
	return show, seats
}

// AddPurchase inserts a purchase of the fixture user holding tickets for the
// given seats. Seats are marked Occupied.
func (f *Fixtures) AddPurchase(t *testing.T, db bun.IDB, status models.PurchaseStatus, seats ...*models.Seat) *models.Buy {
	t.Helper()

	userID := f.User.ID
	buy := &models.Buy{
		Description: "Ticket purchase",
		UserID:      &userID,
		Total:       10,
		Status:      status,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	insert(t, db, buy)

	for _, seat := range seats {
		insert(t, db, &models.Ticket{ShowID: seat.ShowID, SeatID: seat.ID, BuyID: buy.ID})
		seat.Status = models.SeatOccupied
		_, err := db.NewUpdate().Model(seat).Column("status").WherePK().Exec(context.Background())
		require.NoError(t, err)
	}
	return buy
}
