package results

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/ethanol-sim/ethanol-sim/sim/sweep"
)

// Distribution describes one result field across the valid records of a sweep.
type Distribution struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"std_dev"`
	Min    float64 `yaml:"min"`
	P50    float64 `yaml:"p50"`
	P90    float64 `yaml:"p90"`
	Max    float64 `yaml:"max"`
}

// Pick identifies a notable record.
type Pick struct {
	Index       int     `yaml:"index"`
	Combination string  `yaml:"combination"`
	Purity      float64 `yaml:"purity"`
	TotalCost   string  `yaml:"total_cost"`
}

// Summary aggregates a sweep.
type Summary struct {
	Records int          `yaml:"records"`
	Valid   int          `yaml:"valid"`
	Invalid int          `yaml:"invalid"`
	Purity  Distribution `yaml:"purity"`
	Energy  Distribution `yaml:"energy_consumed_w"`
	Cost    Distribution `yaml:"total_cost"`

	BestPurity *Pick `yaml:"best_purity,omitempty"`
	Cheapest   *Pick `yaml:"cheapest,omitempty"`
}

// distribution returns the zero Distribution for empty input. xs is sorted in place.
func distribution(xs []float64) Distribution {
	if len(xs) == 0 {
		return Distribution{}
	}
	sort.Float64s(xs)
	d := Distribution{
		Min: xs[0],
		Max: xs[len(xs)-1],
		P50: stat.Quantile(0.5, stat.Empirical, xs, nil),
		P90: stat.Quantile(0.9, stat.Empirical, xs, nil),
	}
	d.Mean, d.StdDev = stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		d.StdDev = 0
	}
	return d
}

func pick(r sweep.Record) *Pick {
	return &Pick{
		Index:       r.Combination.Index,
		Combination: r.Combination.String(),
		Purity:      r.Result.Purity,
		TotalCost:   formatMoney(r.Result.TotalCost),
	}
}

// Summarize computes statistics over records. Ties for best purity and lowest cost go to
// the earliest combination.
func Summarize(records []sweep.Record) Summary {
	s := Summary{Records: len(records)}
	purity := make([]float64, 0, len(records))
	energy := make([]float64, 0, len(records))
	cost := make([]float64, 0, len(records))
	var best, cheapest *sweep.Record
	for i := range records {
		r := &records[i]
		if !r.Valid() {
			s.Invalid++
			continue
		}
		s.Valid++
		purity = append(purity, r.Result.Purity)
		energy = append(energy, r.Result.EnergyConsumed)
		cost = append(cost, r.Result.TotalCost)
		if best == nil || r.Result.Purity > best.Result.Purity {
			best = r
		}
		if cheapest == nil || r.Result.TotalCost < cheapest.Result.TotalCost {
			cheapest = r
		}
	}
	s.Purity = distribution(purity)
	s.Energy = distribution(energy)
	s.Cost = distribution(cost)
	if best != nil {
		s.BestPurity = pick(*best)
		s.Cheapest = pick(*cheapest)
	}
	return s
}

// Print writes a human-readable report.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Sweep Summary ===\n")
	fmt.Fprintf(w, "Records : %d (valid %d, invalid %d)\n", s.Records, s.Valid, s.Invalid)
	if s.Valid == 0 {
		return
	}
	fmt.Fprintf(w, "Purity  : mean %.4f  sd %.4f  p50 %.4f  p90 %.4f  max %.4f\n",
		s.Purity.Mean, s.Purity.StdDev, s.Purity.P50, s.Purity.P90, s.Purity.Max)
	fmt.Fprintf(w, "Energy  : mean %.4g W  p50 %.4g W  max %.4g W\n", s.Energy.Mean, s.Energy.P50, s.Energy.Max)
	fmt.Fprintf(w, "Cost    : mean %s  min %s  max %s\n",
		formatMoney(s.Cost.Mean), formatMoney(s.Cost.Min), formatMoney(s.Cost.Max))
	fmt.Fprintf(w, "Best    : %s purity=%.4f cost=%s\n", s.BestPurity.Combination, s.BestPurity.Purity, s.BestPurity.TotalCost)
	fmt.Fprintf(w, "Cheapest: %s purity=%.4f cost=%s\n", s.Cheapest.Combination, s.Cheapest.Purity, s.Cheapest.TotalCost)
}

// TotalCostSum adds the total cost of every valid record exactly, to the cent.
func TotalCostSum(records []sweep.Record) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		if r.Valid() {
			sum = sum.Add(decimal.NewFromFloat(r.Result.TotalCost).Round(2))
		}
	}
	return sum
}
