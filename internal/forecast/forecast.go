package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// Horizon names a forecast window in calendar days.
type Horizon struct {
	Name string `json:"name"`
	Days int    `json:"days"`
}

// DefaultHorizons are the short, medium, and long windows shown after an
// upload.
func DefaultHorizons() []Horizon {
	return []Horizon{
		{Name: "short", Days: 7},
		{Name: "medium", Days: 30},
		{Name: "long", Days: 90},
	}
}

// Point is a single forecast observation.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series is one horizon's synthetic forecast. The values are a random walk
// seeded from the observed series' mean return and volatility; they carry
// no predictive meaning and are presented as illustration only.
type Series struct {
	Horizon string  `json:"horizon"`
	Points  []Point `json:"points"`
}

// Generator produces synthetic forecasts from an observed price series.
type Generator struct {
	logger   *slog.Logger
	horizons []Horizon
	rand     *rand.Rand
}

// NewGenerator creates a forecast generator. A nil source uses the shared
// seeded generator; tests inject a fixed source for determinism.
func NewGenerator(logger *slog.Logger, horizons []Horizon, src rand.Source) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if len(horizons) == 0 {
		horizons = DefaultHorizons()
	}
	var rng *rand.Rand
	if src != nil {
		rng = rand.New(src)
	}
	return &Generator{logger: logger, horizons: horizons, rand: rng}
}

// Generate builds one series per horizon from the observed prices. The
// prices arrive most-recent-first, matching the summary's first-row
// convention; the walk starts from prices[0]. Each series has exactly
// Days points with strictly increasing dates starting the day after
// lastDate.
func (g *Generator) Generate(ctx context.Context, prices []float64, lastDate time.Time) ([]Series, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("cannot forecast from an empty price series")
	}
	if lastDate.IsZero() {
		lastDate = time.Now().UTC()
	}

	mean, vol := returnStats(prices)
	start := prices[0]

	out := make([]Series, 0, len(g.horizons))
	for _, h := range g.horizons {
		series := Series{Horizon: h.Name, Points: make([]Point, 0, h.Days)}
		value := start
		for d := 1; d <= h.Days; d++ {
			value *= math.Exp(mean + vol*g.normFloat64())
			if value <= 0 {
				value = start * 0.01
			}
			series.Points = append(series.Points, Point{
				Date:  lastDate.AddDate(0, 0, d).Format("2006-01-02"),
				Value: value,
			})
		}
		out = append(out, series)
	}

	g.logger.DebugContext(ctx, "forecast generated",
		slog.Int("observations", len(prices)),
		slog.Float64("mean_return", mean),
		slog.Float64("volatility", vol),
		slog.Int("series", len(out)))

	return out, nil
}

// returnStats computes the mean and standard deviation of daily log
// returns. The series is most-recent-first, so the chronological return at
// step i is log(prices[i] / prices[i+1]).
func returnStats(prices []float64) (mean, vol float64) {
	var returns []float64
	for i := 0; i+1 < len(prices); i++ {
		if prices[i] <= 0 || prices[i+1] <= 0 {
			continue
		}
		returns = append(returns, math.Log(prices[i]/prices[i+1]))
	}
	if len(returns) == 0 {
		return 0, 0.01
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean = sum / float64(len(returns))

	var sq float64
	for _, r := range returns {
		sq += (r - mean) * (r - mean)
	}
	vol = math.Sqrt(sq / float64(len(returns)))
	if vol == 0 {
		vol = 0.01
	}
	return mean, vol
}

func (g *Generator) normFloat64() float64 {
	if g.rand != nil {
		return g.rand.NormFloat64()
	}
	return rand.NormFloat64()
}
