package forecast

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGenerator() *Generator {
	return NewGenerator(nil, nil, rand.NewPCG(1, 2))
}

func TestGenerator_Generate_Shape(t *testing.T) {
	last := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	prices := []float64{3312.14, 3300.00, 3295.50, 3290.00}

	series, err := fixedGenerator().Generate(context.Background(), prices, last)
	require.NoError(t, err)
	require.Len(t, series, 3)

	wantDays := map[string]int{"short": 7, "medium": 30, "long": 90}
	for _, s := range series {
		assert.Equal(t, wantDays[s.Horizon], len(s.Points), s.Horizon)

		// Dates strictly increase, starting the day after the last
		// observation.
		assert.Equal(t, "2025-07-10", s.Points[0].Date)
		for i := 1; i < len(s.Points); i++ {
			assert.Less(t, s.Points[i-1].Date, s.Points[i].Date)
		}
		for _, p := range s.Points {
			assert.Greater(t, p.Value, 0.0)
		}
	}
}

func TestGenerator_Generate_Deterministic(t *testing.T) {
	prices := []float64{100, 99, 101, 98}
	last := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	a, err := NewGenerator(nil, nil, rand.NewPCG(7, 7)).Generate(context.Background(), prices, last)
	require.NoError(t, err)
	b, err := NewGenerator(nil, nil, rand.NewPCG(7, 7)).Generate(context.Background(), prices, last)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGenerator_Generate_EmptySeries(t *testing.T) {
	_, err := fixedGenerator().Generate(context.Background(), nil, time.Time{})
	require.Error(t, err)
}

func TestGenerator_Generate_SingleObservation(t *testing.T) {
	// One price still forecasts: zero mean return, floor volatility.
	series, err := fixedGenerator().Generate(context.Background(), []float64{100}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestReturnStats(t *testing.T) {
	mean, vol := returnStats([]float64{100, 100, 100})
	assert.InDelta(t, 0, mean, 1e-12)
	assert.Equal(t, 0.01, vol)

	mean, _ = returnStats([]float64{110, 100})
	assert.InDelta(t, 0.0953101798, mean, 1e-6)
}
