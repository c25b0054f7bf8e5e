package charts

import (
	"fmt"

	"github.com/aristath/frontier/internal/modules/portfolio"
	"github.com/rs/zerolog"
)

// Service renders the charts of a finished optimization run
type Service struct {
	log zerolog.Logger
}

// NewService creates a new charts service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "charts").Logger(),
	}
}

// Render draws the chart of the given kind for report as a PNG
func (s *Service) Render(kind string, report *portfolio.Report) ([]byte, error) {
	var (
		img []byte
		err error
	)

	switch kind {
	case KindFrontier:
		if report.Frontier == nil {
			return nil, fmt.Errorf("failed to render %s chart: %w", kind, ErrNotEnoughData)
		}
		img, err = Frontier(report.Frontier.Points, report.Allocation)
	case KindCumulative:
		img, err = Cumulative(report.Cumulative, report.Benchmark)
	case KindAllocation:
		img, err = Allocation(report.Allocation)
	case KindBreaches:
		img, err = Breaches(report.Dates, report.Daily, report.Breaches)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s chart: %w", kind, err)
	}

	s.log.Debug().
		Str("kind", kind).
		Str("run_id", report.RunID).
		Int("bytes", len(img)).
		Msg("Rendered chart")

	return img, nil
}
