package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjective(t *testing.T) {
	tests := []struct {
		in   string
		want Objective
	}{
		{"max_sharpe", ObjectiveMaxSharpe},
		{"MIN_VOLATILITY", ObjectiveMinVolatility},
		{"Maximize Sortino Ratio", ObjectiveMaxSortino},
		{" minimize tracking error ", ObjectiveMinTrackingError},
		{"Maximize Information Ratio", ObjectiveMaxInformationRatio},
		{"Minimize Conditional Value-at-Risk", ObjectiveMinCVaR},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseObjective(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseObjective_Unknown(t *testing.T) {
	_, err := ParseObjective("max_return")
	assert.ErrorIs(t, err, ErrUnknownObjective)
	assert.True(t, IsInvalidInput(err))
}

func TestObjective_Label(t *testing.T) {
	for _, o := range Objectives {
		assert.True(t, o.Valid())
		assert.NotEqual(t, string(o), o.Label())
	}
	assert.Equal(t, "bogus", Objective("bogus").Label())
	assert.False(t, Objective("bogus").Valid())
}

func TestObjective_NeedsDailyReturns(t *testing.T) {
	assert.False(t, ObjectiveMaxSharpe.NeedsDailyReturns())
	assert.False(t, ObjectiveMinVolatility.NeedsDailyReturns())
	assert.True(t, ObjectiveMaxSortino.NeedsDailyReturns())
	assert.True(t, ObjectiveMinCVaR.NeedsDailyReturns())
}
