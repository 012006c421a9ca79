package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-assist-service/internal/geo"
	"roadside-assist-service/internal/model"
	"roadside-assist-service/internal/repository"
)

func ptr(v float64) *float64 { return &v }

func TestNearbySameLocationFirst(t *testing.T) {
	repo := repository.NewMemoryGarageRepository(SeedGarages()...)
	svc := NewGarageService(repo, nil, 10, Options{})

	res, err := svc.Nearby(context.Background(), ptr(37.78825), ptr(-122.4324))
	require.NoError(t, err)

	assert.False(t, res.Fallback)
	require.Len(t, res.Garages, 3)
	assert.Equal(t, "Quick Fix Motors", res.Garages[0].Name)
	assert.Equal(t, "Elite Auto Care", res.Garages[1].Name)
	assert.Equal(t, "Master Mechanics", res.Garages[2].Name)
}

func TestNearbyOutsideRadiusIsEmpty(t *testing.T) {
	repo := repository.NewMemoryGarageRepository(SeedGarages()...)
	svc := NewGarageService(repo, nil, 10, Options{})

	res, err := svc.Nearby(context.Background(), ptr(34.0522), ptr(-118.2437))
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Empty(t, res.Garages)
}

func TestNearbyMissingParams(t *testing.T) {
	repo := repository.NewMemoryGarageRepository(SeedGarages()...)

	res, err := NewGarageService(repo, nil, 10, Options{}).Nearby(context.Background(), nil, ptr(-122.4324))
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Len(t, res.Garages, 2)

	_, err = NewGarageService(repo, nil, 10, Options{StrictMode: true}).Nearby(context.Background(), ptr(1), nil)
	assert.ErrorIs(t, err, ErrMissingCoordinates)
}

func TestNearbyStoreDown(t *testing.T) {
	res, err := NewGarageService(brokenGarages{}, nil, 10, Options{}).Nearby(context.Background(), ptr(37.78825), ptr(-122.4324))
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "Quick Fix Motors", res.Garages[0].Name)

	_, err = NewGarageService(brokenGarages{}, nil, 10, Options{StrictMode: true}).Nearby(context.Background(), ptr(37.78825), ptr(-122.4324))
	assert.ErrorIs(t, err, errStoreDown)
}

func TestNearbyUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryGarageRepository(SeedGarages()...)
	cache := newMapCache()
	svc := NewGarageService(repo, cache, 10, Options{})

	first, err := svc.Nearby(ctx, ptr(37.78825), ptr(-122.4324))
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// Aunque el store cambie, la celda cacheada se sirve hasta que se invalide
	require.NoError(t, repo.ReplaceAll(ctx, nil))
	second, err := svc.Nearby(ctx, ptr(37.78825), ptr(-122.4324))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Len(t, second.Garages, 3)
}

func TestNearbyCacheHitRanksFromQueryPoint(t *testing.T) {
	ctx := context.Background()
	a := garage("a", "Garage A", "", 37.78825, -122.4324, "", 4.5, "$")
	b := garage("b", "Garage B", "", 37.78870, -122.4320, "", 4.5, "$")
	require.Equal(t, geo.Cell(a.Location.Coordinate(), geo.CellPrecision), geo.Cell(b.Location.Coordinate(), geo.CellPrecision))

	svc := NewGarageService(repository.NewMemoryGarageRepository(a, b), newMapCache(), 10, Options{})

	atB, err := svc.Nearby(ctx, ptr(37.78870), ptr(-122.4320))
	require.NoError(t, err)
	require.Len(t, atB.Garages, 2)
	assert.Equal(t, "b", atB.Garages[0].ID)

	atA, err := svc.Nearby(ctx, ptr(37.78825), ptr(-122.4324))
	require.NoError(t, err)
	assert.True(t, atA.Cached)
	require.Len(t, atA.Garages, 2)
	assert.Equal(t, "a", atA.Garages[0].ID)
}

func TestNearbyCacheHitAppliesRadiusFromQueryPoint(t *testing.T) {
	ctx := context.Background()
	a := garage("a", "Garage A", "", 37.78825, -122.4324, "", 4.5, "$")
	b := garage("b", "Garage B", "", 37.78870, -122.4320, "", 4.5, "$")

	// ~60m entre A y B: con radio de 50m cada punto solo ve su propio taller
	svc := NewGarageService(repository.NewMemoryGarageRepository(a, b), newMapCache(), 0.05, Options{})

	atB, err := svc.Nearby(ctx, ptr(37.78870), ptr(-122.4320))
	require.NoError(t, err)
	require.Len(t, atB.Garages, 1)
	assert.Equal(t, "b", atB.Garages[0].ID)

	atA, err := svc.Nearby(ctx, ptr(37.78825), ptr(-122.4324))
	require.NoError(t, err)
	assert.True(t, atA.Cached)
	require.Len(t, atA.Garages, 1)
	assert.Equal(t, "a", atA.Garages[0].ID)
	assert.Equal(t, model.Coordinate{Lat: 37.78825, Lng: -122.4324}, atA.Garages[0].Location.Coordinate())
}

func TestSeedReplacesGaragesAndInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryGarageRepository()
	cache := newMapCache()
	svc := NewGarageService(repo, cache, 10, Options{})

	empty, err := svc.Nearby(ctx, ptr(37.78825), ptr(-122.4324))
	require.NoError(t, err)
	assert.Empty(t, empty.Garages)

	n, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	res, err := svc.Nearby(ctx, ptr(37.78825), ptr(-122.4324))
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Len(t, res.Garages, 3)
	assert.NotEmpty(t, res.Garages[0].Geohash)
}

func TestSeedStoreDown(t *testing.T) {
	_, err := NewGarageService(brokenGarages{}, nil, 10, Options{}).Seed(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}
