package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
)

type calendarRepository interface {
	FindCycleCovering(ctx context.Context, date time.Time) (*models.SchoolCycle, error)
	FindBimesterCovering(ctx context.Context, cycleID string, date time.Time) (*models.Bimester, error)
	FindActiveBimester(ctx context.Context, cycleID string) (*models.Bimester, error)
	FindBimesterByID(ctx context.Context, id string) (*models.Bimester, error)
	FindHolidayOnDate(ctx context.Context, bimesterID string, date time.Time) (*models.Holiday, error)
	FindWeekCovering(ctx context.Context, bimesterID string, date time.Time) (*models.AcademicWeek, error)
}

// CalendarService resolves the temporal context of an attendance date: the
// active school cycle, the bimester containing the date, any holiday on it
// and the academic week type. Pure lookups, no side effects.
type CalendarService struct {
	repo   calendarRepository
	logger *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(repo calendarRepository, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, logger: logger}
}

// Resolve returns the calendar context for the date. It fails with
// NO_ACTIVE_CYCLE or NO_ACTIVE_BIMESTER when the date is not covered;
// holiday and week are returned as data for the caller to gate on.
func (s *CalendarService) Resolve(ctx context.Context, date time.Time) (*models.TemporalContext, error) {
	cycle, err := s.repo.FindCycleCovering(ctx, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoActiveCycle
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve school cycle")
	}

	bimester, err := s.repo.FindBimesterCovering(ctx, cycle.ID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoActiveBimester
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve bimester")
	}

	holiday, err := s.repo.FindHolidayOnDate(ctx, bimester.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve holiday")
	}

	week, err := s.repo.FindWeekCovering(ctx, bimester.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve academic week")
	}

	return &models.TemporalContext{
		Date:     date,
		Cycle:    cycle,
		Bimester: bimester,
		Holiday:  holiday,
		Week:     week,
	}, nil
}

// ResolveBimester returns the explicitly requested bimester, or the cycle's
// active one when no id is given. A cycle without an active bimester yields
// nil, which recalculation treats as an unbounded date range.
func (s *CalendarService) ResolveBimester(ctx context.Context, cycleID string, bimesterID *string) (*models.Bimester, error) {
	if bimesterID != nil && *bimesterID != "" {
		bimester, err := s.repo.FindBimesterByID(ctx, *bimesterID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "bimester not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bimester")
		}
		return bimester, nil
	}

	bimester, err := s.repo.FindActiveBimester(ctx, cycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active bimester")
	}
	return bimester, nil
}
