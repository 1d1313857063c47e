package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driven"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driving"
	"github.com/jlumbroso/ptonppl/internal/logger"
	"github.com/jlumbroso/ptonppl/internal/metrics"
)

// Ensure LookupService implements the interface.
var _ driving.LookupService = (*LookupService)(nil)

// Search results recorded in metrics.
const (
	resultComplete = "complete"
	resultPartial  = "partial"
	resultNotFound = "not_found"
	resultInvalid  = "invalid"
)

// LookupService runs the ordered attempt plan for a query over the
// configured directories and merges what they return.
type LookupService struct {
	emailDomain string
	dirs        map[domain.Backend]driven.Directory
	metrics     *metrics.Metrics
	now         func() time.Time
}

// LookupOption configures a LookupService.
type LookupOption func(*LookupService)

// WithLookupMetrics records attempts and searches in m.
func WithLookupMetrics(m *metrics.Metrics) LookupOption {
	return func(s *LookupService) {
		s.metrics = m
	}
}

// NewLookupService creates a lookup service over dirs. Backends without a
// directory are skipped when the plan reaches them.
func NewLookupService(emailDomain string, dirs []driven.Directory, opts ...LookupOption) *LookupService {
	s := &LookupService{
		emailDomain: emailDomain,
		dirs:        make(map[domain.Backend]driven.Directory, len(dirs)),
		now:         time.Now,
	}
	for _, d := range dirs {
		if d == nil {
			continue
		}
		s.dirs[d.Backend()] = d
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backends returns the configured backends in trust order.
func (s *LookupService) Backends() []domain.Backend {
	var out []domain.Backend
	for _, b := range domain.Backends {
		if _, ok := s.dirs[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Search resolves query into a record. Attempts run one at a time in plan
// order; the first value seen for a field wins and the search stops as soon
// as the record is complete. A partial record is returned without error.
func (s *LookupService) Search(ctx context.Context, query string) (domain.Record, error) {
	start := s.now()
	log := logger.With(zap.String("lookup_id", uuid.NewString()))

	q, err := domain.ParseQuery(query)
	if err != nil {
		log.Debug("query rejected", zap.Error(err))
		s.metrics.ObserveSearch(resultInvalid, s.now().Sub(start))
		return domain.Record{}, err
	}

	if len(s.dirs) == 0 {
		return domain.Record{}, domain.ErrNoBackends
	}

	s.reconnectPrimary(ctx, log)

	plan := domain.PlanAttempts(q, s.emailDomain)
	log.Debug("attempt plan", zap.String("query", q.Raw), zap.Int("attempts", len(plan)))

	var acc domain.Record
	for _, a := range plan {
		if err := ctx.Err(); err != nil {
			return acc, err
		}

		dir, ok := s.dirs[a.Backend]
		if !ok {
			continue
		}

		res := s.attempt(ctx, log, dir, a)
		if !res.IsMatch() {
			continue
		}

		acc = acc.Merge(res.Record)
		if acc.IsComplete() {
			break
		}
	}

	elapsed := s.now().Sub(start)
	switch {
	case acc.IsEmpty():
		s.metrics.ObserveSearch(resultNotFound, elapsed)
		return domain.Record{}, fmt.Errorf("%w: %s", domain.ErrNotFound, q.Raw)
	case acc.IsComplete():
		s.metrics.ObserveSearch(resultComplete, elapsed)
	default:
		s.metrics.ObserveSearch(resultPartial, elapsed)
	}
	return acc, nil
}

// reconnectPrimary forces a fresh session on the first backend that can
// reconnect, so no result is built on state left by an earlier call.
func (s *LookupService) reconnectPrimary(ctx context.Context, log *zap.Logger) {
	for _, b := range domain.Backends {
		dir, ok := s.dirs[b]
		if !ok {
			continue
		}
		r, ok := dir.(driven.Reconnector)
		if !ok {
			continue
		}
		if err := r.Reconnect(ctx); err != nil {
			log.Warn("reconnect failed", zap.Stringer("backend", b), zap.Error(err))
		}
		return
	}
}

// attempt runs one attempt. Backend errors are logged and reported as no match.
func (s *LookupService) attempt(
	ctx context.Context, log *zap.Logger, dir driven.Directory, a domain.Attempt,
) domain.LookupResult {
	start := s.now()
	res, err := dir.SearchOne(ctx, a.Field, a.Value)
	elapsed := s.now().Sub(start)

	outcome := res.Outcome.String()
	if err != nil {
		outcome = "error"
		var be *domain.BackendError
		if errors.As(err, &be) && be.Transient {
			outcome = "transient_error"
		}
		log.Warn("attempt failed", zap.Stringer("attempt", a), zap.Error(err))
		res = domain.NoMatch()
	} else {
		fields := []zap.Field{zap.Stringer("attempt", a), zap.String("outcome", outcome)}
		if res.Outcome == domain.OutcomeRejected {
			fields = append(fields, zap.String("reason", res.Reason))
		}
		log.Debug("attempt", fields...)
	}

	s.metrics.ObserveAttempt(a.Backend.String(), a.Field.String(), outcome, elapsed)
	return res
}
