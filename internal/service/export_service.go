package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
	"github.com/ColegioIDS/ids-attendance-api/pkg/export"
	"github.com/ColegioIDS/ids-attendance-api/pkg/jobs"
)

type exportAttendanceRepository interface {
	ListForSectionDate(ctx context.Context, sectionID string, date time.Time) ([]models.SectionAttendanceRow, error)
}

type exportEnrollmentRepository interface {
	ListIDsBySection(ctx context.Context, sectionID, cycleID string) ([]string, error)
}

type sheetRenderer interface {
	Render(sheet export.Sheet) ([]byte, error)
}

// ExportService renders section attendance sheets and manages background
// section-wide report recalculation.
type ExportService struct {
	attendance  exportAttendanceRepository
	enrollments exportEnrollmentRepository
	reports     *ReportService
	csv         sheetRenderer
	pdf         sheetRenderer
	queue       *jobs.Queue
	logger      *zap.Logger
}

// NewExportService constructs the service. Call BindQueue before Start when
// background recalculation is enabled.
func NewExportService(attendance exportAttendanceRepository, enrollments exportEnrollmentRepository, reports *ReportService, csv, pdf sheetRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		attendance:  attendance,
		enrollments: enrollments,
		reports:     reports,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
	}
}

// BindQueue attaches the recalculation queue.
func (s *ExportService) BindQueue(queue *jobs.Queue) {
	s.queue = queue
}

// ExportSectionSheet renders the section's attendance records for one date as
// CSV or PDF.
func (s *ExportService) ExportSectionSheet(ctx context.Context, sectionID string, date time.Time, format string) ([]byte, string, error) {
	rows, err := s.attendance.ListForSectionDate(ctx, sectionID, date)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section attendance")
	}

	sheet := export.Sheet{
		Title:   fmt.Sprintf("Attendance %s", date.Format("2006-01-02")),
		Headers: []string{"Student", "Status", "Arrival", "Notes", "Recorded At"},
	}
	for _, row := range rows {
		arrival := ""
		if row.ArrivalTime != nil {
			arrival = *row.ArrivalTime
		}
		notes := ""
		if row.Notes != nil {
			notes = *row.Notes
		}
		sheet.Rows = append(sheet.Rows, []string{
			row.StudentName,
			row.StatusCode,
			arrival,
			notes,
			row.RecordedAt.Format(time.RFC3339),
		})
	}

	switch strings.ToLower(format) {
	case "csv", "":
		data, err := s.csv.Render(sheet)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	case "pdf":
		data, err := s.pdf.Render(sheet)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format, expected csv or pdf")
	}
}

// EnqueueSectionRecalc schedules a background recalculation of every active
// enrollment in the section.
func (s *ExportService) EnqueueSectionRecalc(sectionID, cycleID string, bimesterID *string) (string, error) {
	if s.queue == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "background recalculation is disabled")
	}
	job := jobs.RecalcJob{
		ID:         uuid.NewString(),
		SectionID:  sectionID,
		CycleID:    cycleID,
		BimesterID: bimesterID,
	}
	if err := s.queue.Enqueue(job); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue recalculation")
	}
	return job.ID, nil
}

// HandleRecalcJob is the queue handler: it expands the section into its
// enrollments and rebuilds every report.
func (s *ExportService) HandleRecalcJob(ctx context.Context, job jobs.RecalcJob) error {
	ids, err := s.enrollments.ListIDsBySection(ctx, job.SectionID, job.CycleID)
	if err != nil {
		return fmt.Errorf("expand section %s: %w", job.SectionID, err)
	}
	if len(ids) == 0 {
		return nil
	}
	count, err := s.reports.Recalculate(ctx, ids, job.CycleID, job.BimesterID)
	if err != nil {
		return fmt.Errorf("recalculate section %s: %w", job.SectionID, err)
	}
	s.logger.Info("section reports recalculated",
		zap.String("job_id", job.ID),
		zap.String("section_id", job.SectionID),
		zap.Int("reports_created", count),
		zap.Int("enrollments", len(ids)),
	)
	return nil
}
