// Package analytics orchestrates the engine: it loads portfolio data through
// the store query collaborators, runs the pure aggregation, scoring and
// projection functions, and assembles forecasts, turnover predictions and
// recommendations. Nothing is persisted.
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matthewbaird/insights/internal/policy"
	"github.com/matthewbaird/insights/internal/store"
	"github.com/matthewbaird/insights/internal/turnover"
)

// DefaultMaxConcurrentAssessments bounds the portfolio turnover fan-out.
const DefaultMaxConcurrentAssessments = 4

// MaxPropertyHorizonMonths caps single-property forecasts.
const MaxPropertyHorizonMonths = 24

var (
	// ErrInvalidInput is returned for a missing id or an out-of-range horizon.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested landlord, property or lease
	// does not exist. It matches store.ErrNotFound as well.
	ErrNotFound = fmt.Errorf("analytics: %w", store.ErrNotFound)
)

// Config tunes a Service.
type Config struct {
	Policy                   policy.Policy
	MaxConcurrentAssessments int
}

// Dependencies are the collaborators injected into a Service.
type Dependencies struct {
	Config      Config
	Portfolio   store.PortfolioQuery
	Comparables store.ComparableQuery
	// Assessor may be nil, in which case every prediction uses the fallback.
	Assessor *turnover.Assessor
	Logger   *logrus.Logger
}

// Service is the analytics engine.
type Service struct {
	cfg         Config
	portfolio   store.PortfolioQuery
	comparables store.ComparableQuery
	assessor    *turnover.Assessor
	log         *logrus.Logger
	nowFn       func() time.Time
}

// NewService creates a Service.
func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.MaxConcurrentAssessments <= 0 {
		cfg.MaxConcurrentAssessments = DefaultMaxConcurrentAssessments
	}
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	assessor := deps.Assessor
	if assessor == nil {
		assessor = turnover.NewAssessor(nil, turnover.Config{Policy: cfg.Policy.Assessment}, log)
	}
	return &Service{
		cfg:         cfg,
		portfolio:   deps.Portfolio,
		comparables: deps.Comparables,
		assessor:    assessor,
		log:         log,
		nowFn:       time.Now,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// lookupErr maps a store lookup failure onto the package sentinels.
func lookupErr(kind, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", kind, id, err)
}
