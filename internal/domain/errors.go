package domain

import (
	"errors"
	"strings"

	"github.com/aristath/frontier/pkg/formulas"
)

// Input validation failures, detected before any data fetch
var (
	ErrInvalidTickers      = errors.New("Enter ticker names in Capital Letters!")
	ErrInsufficientTickers = errors.New("More than 1 ticker input required!")
	ErrInvalidDateRange    = errors.New("end date must be after start date and not in the future")
	ErrUnknownObjective    = errors.New("unknown optimization objective")
	ErrInvalidRiskFreeRate = errors.New("risk-free rate must be a finite annual fraction")
)

// Data and numeric failures
var (
	ErrDataUnavailable    = errors.New("Unable to download data, try again later!")
	ErrPartialDataMissing = errors.New("Data for one or more tickers could not be retrieved")
	ErrLengthMismatch     = formulas.ErrLengthMismatch
	ErrNumericDegeneracy  = errors.New("numeric degeneracy")
)

// PartialDataError names the tickers for which the provider returned no data
type PartialDataError struct {
	Missing []string // Sorted user-facing tickers
}

func (e *PartialDataError) Error() string {
	return "Data for the following tickers could not be retrieved: " + strings.Join(e.Missing, ", ")
}

// Is makes errors.Is(err, ErrPartialDataMissing) match
func (e *PartialDataError) Is(target error) bool {
	return target == ErrPartialDataMissing
}

// IsInvalidInput reports whether err is a boundary validation failure
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidTickers) ||
		errors.Is(err, ErrInsufficientTickers) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrUnknownObjective) ||
		errors.Is(err, ErrInvalidRiskFreeRate)
}
