// Package service orchestrates the repayment domain: it loads per-user
// state, runs the plan calculations, and persists changes. Handlers stay
// thin; everything stateful happens here.
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/infra/observability"
	"github.com/fyodorvi/gem-guru/internal/infra/resilience"
	"github.com/fyodorvi/gem-guru/internal/plan"
	"github.com/fyodorvi/gem-guru/internal/port"
)

var tracer = otel.Tracer("service")

// GuruService implements the repayment tracking operations.
type GuruService struct {
	store     port.UserStore
	extractor port.TextExtractor
	calcCache port.Cache[*domain.Calculation]
	parseSem  *resilience.Bulkhead
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewGuruService wires the service with its dependencies.
func NewGuruService(
	store port.UserStore,
	extractor port.TextExtractor,
	calcCache port.Cache[*domain.Calculation],
	parseSem *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *GuruService {
	return &GuruService{
		store:     store,
		extractor: extractor,
		calcCache: calcCache,
		parseSem:  parseSem,
		metrics:   metrics,
		logger:    logger,
	}
}

// loadState fetches a user's data, applying defaults for first-time users
// and migrating legacy settings. Migrations are persisted immediately so the
// old format is read at most once.
func (s *GuruService) loadState(ctx context.Context, userID string) (*domain.UserData, error) {
	data, err := s.store.LoadUserData(ctx, userID)
	if err != nil {
		s.metrics.IncrStoreError("user_data")
		return nil, err
	}

	now := time.Now().UTC()
	fresh := data == nil
	if fresh {
		data = &domain.UserData{Purchases: []domain.Purchase{}}
	}
	if data.Purchases == nil {
		data.Purchases = []domain.Purchase{}
	}

	settings, changed := plan.NormalizeSettings(data.Settings, now)
	data.Settings = settings

	if changed && !fresh {
		s.logger.Info("migrated profile settings",
			zap.String("user_id", userID),
		)
		if err := s.saveState(ctx, userID, data); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// saveState persists the user's full state and drops their cached
// calculation.
func (s *GuruService) saveState(ctx context.Context, userID string, data *domain.UserData) error {
	if err := s.store.SaveUserData(ctx, userID, data); err != nil {
		s.metrics.IncrStoreError("user_data")
		return err
	}
	s.calcCache.Delete(userID)
	return nil
}

// calculate builds the current-cycle report from loaded state and refreshes
// the cache.
func (s *GuruService) calculate(userID string, data *domain.UserData) *domain.Calculation {
	calc := plan.BuildCalculation(data.Purchases, data.Settings)
	s.calcCache.Set(userID, calc)
	return calc
}

// Calculate returns the current-cycle repayment report.
func (s *GuruService) Calculate(ctx context.Context, userID string) (*domain.Calculation, error) {
	ctx, span := tracer.Start(ctx, "GuruService.Calculate")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("calculate", time.Since(start)) }()

	if calc, ok := s.calcCache.Get(userID); ok {
		s.metrics.IncrCacheHit("calculation")
		return calc, nil
	}
	s.metrics.IncrCacheMiss("calculation")

	data, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.calculate(userID, data), nil
}

// Projection returns the twelve-month repayment forecast.
func (s *GuruService) Projection(ctx context.Context, userID string) (*domain.Projection, error) {
	ctx, span := tracer.Start(ctx, "GuruService.Projection")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("projection", time.Since(start)) }()

	data, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	return plan.Project(data.Purchases, data.Settings), nil
}
