// Package returns builds the aligned daily return series every downstream
// computation consumes. Market data is fetched once per run.
package returns

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/aristath/frontier/internal/domain"
)

// Validator enforces the boundary rules on a run configuration.
// Ticker casing is checked before ticker count, matching the order users see errors in.
type Validator struct {
	MaxLookbackYears int // 0 disables the lookback bound
	Now              func() time.Time
}

// NewValidator creates a validator using the wall clock
func NewValidator(maxLookbackYears int) Validator {
	return Validator{MaxLookbackYears: maxLookbackYears, Now: time.Now}
}

// Validate returns the first violated rule, or nil
func (v Validator) Validate(cfg domain.RunConfig) error {
	if err := ValidateTickers(cfg.Tickers); err != nil {
		return err
	}
	if !cfg.Objective.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownObjective, cfg.Objective)
	}
	if math.IsNaN(cfg.RiskFreeRate) || math.IsInf(cfg.RiskFreeRate, 0) {
		return domain.ErrInvalidRiskFreeRate
	}
	return v.validateDates(cfg.Start, cfg.End)
}

// ValidateTickers checks casing, count and uniqueness
func ValidateTickers(tickers []string) error {
	for _, t := range tickers {
		if !isCanonicalTicker(t) {
			return fmt.Errorf("%w (got %q)", domain.ErrInvalidTickers, t)
		}
	}
	if len(tickers) <= 1 {
		return domain.ErrInsufficientTickers
	}

	seen := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: duplicate ticker %s", domain.ErrInvalidTickers, t)
		}
		seen[t] = struct{}{}
	}
	return nil
}

// isCanonicalTicker reports whether t is non-empty, has no spaces and no lowercase letters
func isCanonicalTicker(t string) bool {
	if t == "" || strings.TrimSpace(t) != t {
		return false
	}
	for _, r := range t {
		if unicode.IsLower(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func (v Validator) validateDates(start, end time.Time) error {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	today := domain.TruncateDay(now())
	start, end = domain.TruncateDay(start), domain.TruncateDay(end)

	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", domain.ErrInvalidDateRange)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end %s is not after start %s", domain.ErrInvalidDateRange,
			end.Format(domain.DateLayout), start.Format(domain.DateLayout))
	}
	if end.After(today) {
		return fmt.Errorf("%w: end %s is after today", domain.ErrInvalidDateRange, end.Format(domain.DateLayout))
	}
	if v.MaxLookbackYears > 0 && start.Before(today.AddDate(-v.MaxLookbackYears, 0, 0)) {
		return fmt.Errorf("%w: start %s exceeds the %d-year lookback", domain.ErrInvalidDateRange,
			start.Format(domain.DateLayout), v.MaxLookbackYears)
	}
	return nil
}
