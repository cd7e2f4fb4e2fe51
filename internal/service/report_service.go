package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	"github.com/ColegioIDS/ids-attendance-api/internal/repository"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
)

type reportStore interface {
	RunInTx(ctx context.Context, timeout time.Duration, fn func(tx repository.AttendanceTx) error) error
}

type reportFinder interface {
	FindByEnrollment(ctx context.Context, enrollmentID string) (*models.AttendanceReport, error)
}

type reportEnrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

type reportCache interface {
	Get(ctx context.Context, enrollmentID string) (*models.AttendanceReport, error)
	Set(ctx context.Context, report *models.AttendanceReport, ttl time.Duration) error
}

// bucket is the classification of one attendance fact row.
type bucket int

const (
	bucketPresent bucket = iota
	bucketJustified
	bucketAbsent
	bucketTemporal
	bucketTardy
)

// classifyRow maps a fact row to its tally bucket by the linked status
// flags. Unclassified statuses deliberately fall back to absent so custom
// codes never inflate the attendance percentage.
func classifyRow(row models.ClassAttendanceRow) bucket {
	switch {
	case row.StatusCode == models.StatusCodePresent:
		return bucketPresent
	case row.IsNegative && row.IsExcused:
		return bucketJustified
	case row.IsNegative && !row.IsExcused:
		return bucketAbsent
	case row.IsTemporal:
		return bucketTemporal
	default:
		return bucketAbsent
	}
}

// ReportService rebuilds the consolidated per-enrollment attendance report
// from the underlying fact rows. Reports are projections and are always safe
// to discard and recompute.
type ReportService struct {
	store       reportStore
	finder      reportFinder
	enrollments reportEnrollmentRepository
	cache       reportCache
	calendar    *CalendarService
	configs     validationConfigRepository
	txTimeout   time.Duration
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewReportService constructs the recalculator. cache may be nil when no
// redis backend is configured.
func NewReportService(store reportStore, finder reportFinder, enrollments reportEnrollmentRepository, cache reportCache, calendar *CalendarService, configs validationConfigRepository, txTimeout, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	if txTimeout <= 0 {
		txTimeout = 30 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{store: store, finder: finder, enrollments: enrollments, cache: cache, calendar: calendar, configs: configs, txTimeout: txTimeout, cacheTTL: cacheTTL, logger: logger}
}

// GetReport serves the consolidated report for one enrollment, reading
// through the cache when one is configured.
func (s *ReportService) GetReport(ctx context.Context, enrollmentID string) (*models.AttendanceReport, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, enrollmentID); err == nil {
			return cached, nil
		} else if err != appErrors.ErrCacheMiss {
			s.logger.Warn("report cache read failed", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		}
	}

	report, err := s.finder.FindByEnrollment(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if s.enrollments != nil {
				if _, lookupErr := s.enrollments.FindByID(ctx, enrollmentID); errors.Is(lookupErr, sql.ErrNoRows) {
					return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
				}
			}
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance report for enrollment "+enrollmentID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance report")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, report, s.cacheTTL); err != nil {
			s.logger.Warn("report cache write failed", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		}
	}
	return report, nil
}

// Recalculate rebuilds reports for the given enrollments inside its own
// transaction and returns how many reports were written.
func (s *ReportService) Recalculate(ctx context.Context, enrollmentIDs []string, cycleID string, bimesterID *string) (int, error) {
	var count int
	err := s.store.RunInTx(ctx, s.txTimeout, func(tx repository.AttendanceTx) error {
		n, err := s.RecalculateTx(ctx, tx, enrollmentIDs, cycleID, bimesterID)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecalculateTx rebuilds reports within an existing transaction, so the bulk
// registrar can commit facts and reports atomically. Returns the number of
// reports created (as opposed to updated).
func (s *ReportService) RecalculateTx(ctx context.Context, tx repository.AttendanceTx, enrollmentIDs []string, cycleID string, bimesterID *string) (int, error) {
	if len(enrollmentIDs) == 0 {
		return 0, nil
	}

	bimester, err := s.calendar.ResolveBimester(ctx, cycleID, bimesterID)
	if err != nil {
		return 0, err
	}
	var from, to *time.Time
	var reportBimesterID *string
	if bimester != nil {
		from, to = &bimester.StartDate, &bimester.EndDate
		reportBimesterID = &bimester.ID
	}

	cfg, err := s.configs.EnsureActive(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve attendance config")
	}
	threshold := cfg.RiskThresholdPercentage
	if threshold <= 0 {
		threshold = 80
	}

	created := 0
	now := time.Now().UTC()
	for _, enrollmentID := range enrollmentIDs {
		rows, err := tx.ListRowsForEnrollment(ctx, enrollmentID, from, to)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance rows")
		}

		report := buildReport(enrollmentID, cycleID, reportBimesterID, rows, threshold)
		report.LastRecalculatedAt = now

		wasCreated, err := tx.UpsertReport(ctx, report)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert report")
		}
		if wasCreated {
			created++
		}
	}
	return created, nil
}

// buildReport tallies classified rows into a fresh report. Rows are expected
// in date order; the consecutive-absence run is folded from the tail.
func buildReport(enrollmentID, cycleID string, bimesterID *string, rows []models.ClassAttendanceRow, riskThreshold float64) *models.AttendanceReport {
	report := &models.AttendanceReport{
		EnrollmentID: enrollmentID,
		CycleID:      cycleID,
		BimesterID:   bimesterID,
	}

	for _, row := range rows {
		switch classifyRow(row) {
		case bucketPresent:
			report.PresentCount++
		case bucketJustified:
			report.JustifiedCount++
		case bucketAbsent:
			report.AbsentCount++
		case bucketTemporal:
			report.TemporalCount++
		case bucketTardy:
			report.TardyCount++
		}
	}

	totalDays := report.PresentCount + report.JustifiedCount + report.AbsentCount + report.TemporalCount + report.TardyCount
	if totalDays == 0 {
		report.AttendancePercentage = 100
	} else {
		report.AttendancePercentage = float64(report.PresentCount+report.TemporalCount) / float64(totalDays) * 100
	}
	report.AbsencePercentage = 100 - report.AttendancePercentage
	report.IsAtRisk = report.AttendancePercentage < riskThreshold
	report.ConsecutiveAbsences = trailingAbsenceRun(rows)

	return report
}

// trailingAbsenceRun counts the run of negative-status days at the tail of
// the enrollment's date-ordered history. A day counts only when every record
// on it carries an unexcused negative status.
func trailingAbsenceRun(rows []models.ClassAttendanceRow) int {
	if len(rows) == 0 {
		return 0
	}

	run := 0
	i := len(rows) - 1
	for i >= 0 {
		day := rows[i].Date
		allAbsent := true
		for i >= 0 && rows[i].Date.Equal(day) {
			if classifyRow(rows[i]) != bucketAbsent {
				allAbsent = false
			}
			i--
		}
		if !allAbsent {
			break
		}
		run++
	}
	return run
}
