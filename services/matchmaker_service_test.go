package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tictactoe-arena/models"
)

func TestFindOrCreateReusesOpenMatch(t *testing.T) {
	ctx := context.Background()
	reg := newFakeRegistry()
	mm := NewMatchmakerService(reg)

	first, err := mm.FindOrCreateMatch(ctx, "timed")
	require.NoError(t, err)
	second, err := mm.FindOrCreateMatch(ctx, "timed")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, reg.created)

	// second join clears the open tag
	reg.open[first] = models.MatchLabel{Open: false, Mode: models.ModeTimed}

	third, err := mm.FindOrCreateMatch(ctx, "timed")
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
	assert.Equal(t, 2, reg.created)
}

func TestFindOrCreateKeepsModesApart(t *testing.T) {
	ctx := context.Background()
	reg := newFakeRegistry()
	mm := NewMatchmakerService(reg)

	timed, err := mm.FindOrCreateMatch(ctx, "timed")
	require.NoError(t, err)
	classic, err := mm.FindOrCreateMatch(ctx, "Classic")
	require.NoError(t, err)
	assert.NotEqual(t, timed, classic)
	assert.Equal(t, models.ModeClassic, reg.open[classic].Mode)
}

func TestFindOrCreateFirstFound(t *testing.T) {
	reg := newFakeRegistry()
	a, _ := reg.Create(context.Background(), models.ModeClassic)
	_, _ = reg.Create(context.Background(), models.ModeClassic)

	id, err := NewMatchmakerService(reg).FindOrCreateMatch(context.Background(), "classic")
	require.NoError(t, err)
	assert.Equal(t, a, id)
}

func TestFindOrCreateErrors(t *testing.T) {
	reg := newFakeRegistry()
	mm := NewMatchmakerService(reg)

	_, err := mm.FindOrCreateMatch(context.Background(), "blitz")
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Zero(t, reg.created)

	reg.listErr = errStoreDown
	_, err = mm.FindOrCreateMatch(context.Background(), "timed")
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrInvalidMode)
}
