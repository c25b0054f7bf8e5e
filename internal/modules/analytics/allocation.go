package analytics

import "sort"

// AllocationEntry is one ticker's share of the optimized portfolio
type AllocationEntry struct {
	Ticker  string  `json:"ticker"`
	Weight  float64 `json:"weight"`
	Percent float64 `json:"percent"` // weight × 100, two decimals
}

// Allocation is the optimized weight vector with its realized annual performance
type Allocation struct {
	Entries           []AllocationEntry `json:"entries"`
	AnnualReturn      float64           `json:"annual_return"`
	AnnualVolatility  float64           `json:"annual_volatility"`
	ReturnPercent     float64           `json:"return_percent"`     // two decimals
	VolatilityPercent float64           `json:"volatility_percent"` // two decimals
}

// NewAllocation pairs tickers with weights, largest weight first
func NewAllocation(tickers []string, weights []float64, annualReturn, annualVolatility float64) Allocation {
	entries := make([]AllocationEntry, len(tickers))
	for i, t := range tickers {
		entries[i] = AllocationEntry{Ticker: t, Weight: weights[i], Percent: Round2(weights[i] * 100)}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Weight > entries[j].Weight })

	return Allocation{
		Entries:           entries,
		AnnualReturn:      annualReturn,
		AnnualVolatility:  annualVolatility,
		ReturnPercent:     Round2(annualReturn * 100),
		VolatilityPercent: Round2(annualVolatility * 100),
	}
}
