package domain

import (
	"fmt"
	"strings"
)

// Objective selects the scalar function minimized by the optimizer
type Objective string

const (
	ObjectiveMaxSharpe           Objective = "max_sharpe"
	ObjectiveMinVolatility       Objective = "min_volatility"
	ObjectiveMaxSortino          Objective = "max_sortino"
	ObjectiveMinTrackingError    Objective = "min_tracking_error"
	ObjectiveMaxInformationRatio Objective = "max_information_ratio"
	ObjectiveMinCVaR             Objective = "min_cvar"
)

// Objectives lists every supported objective in presentation order
var Objectives = []Objective{
	ObjectiveMaxSharpe,
	ObjectiveMinVolatility,
	ObjectiveMaxSortino,
	ObjectiveMinTrackingError,
	ObjectiveMaxInformationRatio,
	ObjectiveMinCVaR,
}

var objectiveLabels = map[Objective]string{
	ObjectiveMaxSharpe:           "Maximize Sharpe Ratio",
	ObjectiveMinVolatility:       "Minimize Volatility",
	ObjectiveMaxSortino:          "Maximize Sortino Ratio",
	ObjectiveMinTrackingError:    "Minimize Tracking Error",
	ObjectiveMaxInformationRatio: "Maximize Information Ratio",
	ObjectiveMinCVaR:             "Minimize Conditional Value-at-Risk",
}

// Label returns the human-readable name
func (o Objective) Label() string {
	if l, ok := objectiveLabels[o]; ok {
		return l
	}
	return string(o)
}

// Valid reports whether o is a supported objective
func (o Objective) Valid() bool {
	_, ok := objectiveLabels[o]
	return ok
}

// NeedsDailyReturns reports whether the objective evaluates the realized daily series
// rather than only the mean vector and covariance matrix.
func (o Objective) NeedsDailyReturns() bool {
	switch o {
	case ObjectiveMaxSortino, ObjectiveMinTrackingError, ObjectiveMaxInformationRatio, ObjectiveMinCVaR:
		return true
	}
	return false
}

// ParseObjective accepts either a key ("max_sharpe") or a label ("Maximize Sharpe Ratio"),
// case-insensitively.
func ParseObjective(s string) (Objective, error) {
	needle := strings.TrimSpace(s)
	for _, o := range Objectives {
		if strings.EqualFold(needle, string(o)) || strings.EqualFold(needle, o.Label()) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownObjective, s)
}
