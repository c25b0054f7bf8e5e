package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/utils"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

const maxRequestBody = 1 << 16

var validate = validator.New()

// OptimizeRequest is the body of the optimize and chart endpoints
type OptimizeRequest struct {
	Tickers      string   `json:"tickers" validate:"required"` // Comma-separated, e.g. "TCS, INFY"
	StartDate    string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Objective    string   `json:"objective" default:"max_sharpe"` // Key or display label
	RiskFreeRate *float64 `json:"risk_free_rate" validate:"omitempty,gt=-1,lt=1"`
}

// FieldError describes one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// requestError is a malformed request body, rejected before the run starts
type requestError struct {
	msg    string
	fields []FieldError
}

func (e *requestError) Error() string { return e.msg }

// decodeRequest binds the JSON body, applies defaults and validates field constraints
func decodeRequest(r *http.Request) (OptimizeRequest, error) {
	var req OptimizeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, &requestError{msg: fmt.Sprintf("invalid request body: %v", err)}
	}

	if err := defaults.Set(&req); err != nil {
		return req, &requestError{msg: fmt.Sprintf("invalid request body: %v", err)}
	}

	if err := validate.StructCtx(r.Context(), &req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return req, &requestError{msg: err.Error()}
		}
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return req, &requestError{msg: "request validation failed", fields: fields}
	}

	return req, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", fe.Field(), fe.Param())
	case "gt", "lt":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), map[string]string{"gt": "greater than", "lt": "less than"}[fe.Tag()], fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}

// RunConfig converts the request into an immutable run configuration.
// suffix is stripped from tickers that already carry it; defaultRate applies when the
// request omits the risk-free rate.
func (req OptimizeRequest) RunConfig(suffix string, defaultRate float64) (domain.RunConfig, error) {
	objective, err := domain.ParseObjective(req.Objective)
	if err != nil {
		return domain.RunConfig{}, err
	}

	start, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return domain.RunConfig{}, fmt.Errorf("%w: start date: %v", domain.ErrInvalidDateRange, err)
	}
	end, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.EndDate))
	if err != nil {
		return domain.RunConfig{}, fmt.Errorf("%w: end date: %v", domain.ErrInvalidDateRange, err)
	}

	rate := defaultRate
	if req.RiskFreeRate != nil {
		rate = *req.RiskFreeRate
	}

	return domain.RunConfig{
		Tickers:      utils.TrimSuffixes(utils.ParseCSV(req.Tickers), suffix),
		Start:        start,
		End:          end,
		Objective:    objective,
		RiskFreeRate: rate,
	}, nil
}
