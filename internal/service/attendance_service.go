package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	"github.com/ColegioIDS/ids-attendance-api/internal/repository"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
)

type attendanceStore interface {
	RunInTx(ctx context.Context, timeout time.Duration, fn func(tx repository.AttendanceTx) error) error
}

type reportCacheInvalidator interface {
	Invalidate(ctx context.Context, enrollmentIDs []string)
}

// BulkRegisterResult summarises one committed bulk registration.
type BulkRegisterResult struct {
	Success                 bool                     `json:"success"`
	CreatedAttendances      int                      `json:"created_attendances"`
	CreatedClassAttendances int                      `json:"created_class_attendances"`
	CreatedReports          int                      `json:"created_reports"`
	MinutesLate             int                      `json:"minutes_late,omitempty"`
	Records                 []models.ClassAttendance `json:"records"`
}

// AttendanceService performs the bulk registration write: one record per
// (enrollment, schedule) pair, plus report recalculation for every touched
// enrollment, all inside one transaction. Partial writes never survive.
type AttendanceService struct {
	validator *AttendanceValidator
	store     attendanceStore
	reports   *ReportService
	cache     reportCacheInvalidator
	metrics   *MetricsService
	txTimeout time.Duration
	logger    *zap.Logger
}

// NewAttendanceService constructs the registrar.
func NewAttendanceService(validator *AttendanceValidator, store attendanceStore, reports *ReportService, cache reportCacheInvalidator, metrics *MetricsService, txTimeout time.Duration, logger *zap.Logger) *AttendanceService {
	if txTimeout <= 0 {
		txTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		validator: validator,
		store:     store,
		reports:   reports,
		cache:     cache,
		metrics:   metrics,
		txTimeout: txTimeout,
		logger:    logger,
	}
}

// RegisterBulk validates the submission and, when legal, writes one record
// per eligible enrollment and matching schedule. A duplicate found for any
// enrollment aborts the whole submission.
func (s *AttendanceService) RegisterBulk(ctx context.Context, submission BulkSubmission) (*BulkRegisterResult, error) {
	vc, err := s.validator.Validate(ctx, submission)
	if err != nil {
		s.countSubmission("rejected")
		return nil, err
	}

	schedules := filterSchedules(vc.Schedules, submission.CourseAssignmentIDs)
	if len(schedules) == 0 {
		s.countSubmission("rejected")
		return nil, appErrors.Clone(appErrors.ErrNoSchedules, "no schedules match the course assignment filter")
	}

	minutesLate := 0
	if submission.ArrivalTime != nil {
		minutesLate = lateMinutes(*submission.ArrivalTime, vc.Config.LateThresholdTime, vc.Config.MarkAsTardyAfterMinutes)
	}

	result := &BulkRegisterResult{}
	err = s.store.RunInTx(ctx, s.txTimeout, func(tx repository.AttendanceTx) error {
		touched := make([]string, 0, len(vc.Enrollments))
		records := make([]models.ClassAttendance, 0, len(vc.Enrollments)*len(schedules))
		now := time.Now().UTC()

		for _, enrollment := range vc.Enrollments {
			// Layer 13: per-enrollment duplicate check at write time. The
			// unique index on (enrollment_id, schedule_id, date) is the
			// authoritative guard under concurrency; this check exists for
			// the friendlier error.
			exists, err := tx.ExistsForDate(ctx, enrollment.ID, vc.Date)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing attendance")
			}
			if exists {
				return appErrors.Clone(appErrors.ErrDuplicateRecord,
					fmt.Sprintf("attendance already recorded for student %s on %s", enrollment.StudentName, vc.Date.Format("2006-01-02")))
			}

			for _, schedule := range schedules {
				record := models.ClassAttendance{
					EnrollmentID:       enrollment.ID,
					Date:               vc.Date,
					ScheduleID:         schedule.ID,
					CourseAssignmentID: schedule.CourseAssignmentID,
					AttendanceStatusID: vc.Status.ID,
					StatusCode:         vc.Status.Code,
					ArrivalTime:        submission.ArrivalTime,
					DepartureTime:      submission.DepartureTime,
					Notes:              submission.Notes,
					RecordedBy:         vc.Identity.User.ID,
					RecordedAt:         now,
				}
				if err := tx.InsertClassAttendance(ctx, &record); err != nil {
					return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "failed to insert attendance record")
				}
				records = append(records, record)
			}
			touched = append(touched, enrollment.ID)
		}

		createdReports, err := s.reports.RecalculateTx(ctx, tx, touched, vc.Temporal.Cycle.ID, &vc.Temporal.Bimester.ID)
		if err != nil {
			return err
		}

		result.Success = true
		result.CreatedAttendances = len(touched)
		result.CreatedClassAttendances = len(records)
		result.CreatedReports = createdReports
		result.MinutesLate = minutesLate
		result.Records = records
		return nil
	})
	if err != nil {
		s.countSubmission("failed")
		return nil, err
	}

	touched := make([]string, 0, len(vc.Enrollments))
	for _, enrollment := range vc.Enrollments {
		touched = append(touched, enrollment.ID)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, touched)
	}
	s.countSubmission("accepted")
	if s.metrics != nil {
		s.metrics.AddRecordsCreated(result.CreatedClassAttendances)
		s.metrics.AddReportsRecalculated(result.CreatedAttendances)
	}

	s.logger.Info("bulk attendance registered",
		zap.String("section_id", vc.Section.ID),
		zap.String("teacher_id", vc.Identity.Teacher.ID),
		zap.Time("date", vc.Date),
		zap.Int("records", result.CreatedClassAttendances),
		zap.Int("reports_created", result.CreatedReports),
	)
	return result, nil
}

func (s *AttendanceService) countSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.CountSubmission(outcome)
	}
}

// filterSchedules applies the optional course-assignment allow-list.
func filterSchedules(schedules []models.Schedule, allowList []string) []models.Schedule {
	if len(allowList) == 0 {
		return schedules
	}
	allowed := make(map[string]struct{}, len(allowList))
	for _, id := range allowList {
		allowed[id] = struct{}{}
	}
	filtered := make([]models.Schedule, 0, len(schedules))
	for _, schedule := range schedules {
		if _, ok := allowed[schedule.CourseAssignmentID]; ok {
			filtered = append(filtered, schedule)
		}
	}
	return filtered
}

// lateMinutes compares arrival and threshold as minutes since midnight.
// Arrivals at or before the threshold are not late, and lateness below the
// tardy mark is reported as zero.
func lateMinutes(arrival, threshold string, markAsTardyAfter int) int {
	arrivalMin, ok := parseClockMinutes(arrival)
	if !ok {
		return 0
	}
	thresholdMin, ok := parseClockMinutes(threshold)
	if !ok {
		return 0
	}
	if arrivalMin <= thresholdMin {
		return 0
	}
	late := arrivalMin - thresholdMin
	if late < markAsTardyAfter {
		return 0
	}
	return late
}

func parseClockMinutes(value string) (int, bool) {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) < 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}
