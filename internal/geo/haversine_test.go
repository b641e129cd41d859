package geo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MosinFAM/halal-guide/internal/models"
)

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{37.5665, 126.9780}, Point{37.5665, 126.9780}, 0},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 111.19492664455873},
		{"antipodes", Point{0, 0}, Point{0, 180}, 20015.086796020572},
		{"seoul city hall to gangnam", Point{37.5665, 126.9780}, Point{37.4979, 127.0276}, 8.7929},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), 0.01)
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{37.5344, 126.9944}
	b := Point{37.5551, 127.0448}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("", "", "")
	require.NoError(t, err)
	assert.Nil(t, q.Origin)
	assert.False(t, q.Active())

	q, err = ParseQuery("37.5", "127.0", "")
	require.NoError(t, err)
	require.NotNil(t, q.Origin)
	assert.False(t, q.Active())

	q, err = ParseQuery("37.5", "", "5")
	require.NoError(t, err)
	assert.False(t, q.Active())

	q, err = ParseQuery("37.5", "127.0", "5")
	require.NoError(t, err)
	assert.True(t, q.Active())
	assert.Equal(t, 5.0, *q.Radius)

	for _, bad := range [][3]string{
		{"abc", "127", "5"},
		{"37.5", "127", "five"},
		{"91", "127", "5"},
		{"37.5", "-181", "5"},
		{"37.5", "127", "-1"},
		{"NaN", "127", "5"},
	} {
		_, err := ParseQuery(bad[0], bad[1], bad[2])
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr, "%v", bad)
	}
}

func TestApply_WithinRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		origin := Point{Lat: 37 + rng.Float64(), Lng: 126.5 + rng.Float64()}
		radius := rng.Float64() * 30

		places := make([]models.HalalPlace, 50)
		for j := range places {
			places[j] = models.HalalPlace{
				ID:        int64(j),
				Latitude:  37 + rng.Float64(),
				Longitude: 126.5 + rng.Float64(),
			}
		}

		got := Apply(places, Query{Origin: &origin, Radius: &radius})

		kept := map[int64]bool{}
		for _, p := range got {
			d := Distance(origin, Point{p.Latitude, p.Longitude})
			assert.LessOrEqual(t, d, radius+1e-6)
			require.NotNil(t, p.DistanceKm)
			assert.InDelta(t, d, *p.DistanceKm, 1e-9)
			kept[p.ID] = true
		}
		for _, p := range places {
			if !kept[p.ID] {
				assert.Greater(t, Distance(origin, Point{p.Latitude, p.Longitude}), radius)
			}
		}
	}
}

func TestApply_NoLocation(t *testing.T) {
	places := []models.HalalPlace{{ID: 1}, {ID: 2}}
	got := Apply(places, Query{})
	assert.Len(t, got, 2)
	assert.Nil(t, got[0].DistanceKm)
}

func TestApply_OriginWithoutRadius(t *testing.T) {
	origin := Point{37.5665, 126.9780}
	places := []models.HalalPlace{
		{ID: 1, Latitude: 37.5665, Longitude: 126.9780},
		{ID: 2, Latitude: 35.1796, Longitude: 129.0756},
	}
	got := Apply(places, Query{Origin: &origin})
	require.Len(t, got, 2)
	assert.InDelta(t, 0, *got[0].DistanceKm, 1e-9)
	assert.Greater(t, *got[1].DistanceKm, 300.0)
}
