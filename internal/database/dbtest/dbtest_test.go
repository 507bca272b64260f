package dbtest

import (
	"context"
	"testing"

	"ms-cinema/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsolatesEveryCall(t *testing.T) {
	ctx := context.Background()

	first := New(t)
	Seed(t, first)

	second := New(t)
	f := Seed(t, second)
	assert.Equal(t, int64(1), f.User.ID, "the second database starts empty")

	_, err := second.NewDelete().Model((*models.User)(nil)).Where("id = ?", f.User.ID).Exec(ctx)
	require.NoError(t, err)

	users, err := first.NewSelect().Model((*models.User)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, users)
}
