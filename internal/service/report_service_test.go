package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
)

func row(day int, code string, negative, excused, temporal bool) models.ClassAttendanceRow {
	return models.ClassAttendanceRow{
		EnrollmentID: "enr-1",
		Date:         time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		StatusCode:   code,
		IsNegative:   negative,
		IsExcused:    excused,
		IsTemporal:   temporal,
	}
}

func TestClassifyRow(t *testing.T) {
	cases := []struct {
		name string
		row  models.ClassAttendanceRow
		want bucket
	}{
		{"present", row(1, models.StatusCodePresent, false, false, false), bucketPresent},
		{"excused negative is justified", row(1, "J", true, true, false), bucketJustified},
		{"unexcused negative is absent", row(1, "A", true, false, false), bucketAbsent},
		{"temporal", row(1, "TM", false, false, true), bucketTemporal},
		{"tardy falls back to absent", row(1, models.StatusCodeTardy, false, false, false), bucketAbsent},
		{"unknown custom code falls back to absent", row(1, "X", false, false, false), bucketAbsent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyRow(tc.row))
		})
	}
}

func TestBuildReportTallies(t *testing.T) {
	var rows []models.ClassAttendanceRow
	day := 1
	for i := 0; i < 18; i++ {
		rows = append(rows, row(day, "P", false, false, false))
		day++
	}
	for i := 0; i < 2; i++ {
		rows = append(rows, row(day, "J", true, true, false))
		day++
	}
	for i := 0; i < 3; i++ {
		rows = append(rows, row(day, "A", true, false, false))
		day++
	}
	rows = append(rows, row(day, "TM", false, false, true))
	day++
	// A tardy without classification flags counts against attendance.
	rows = append(rows, row(day, "T", false, false, false))

	report := buildReport("enr-1", "cycle-1", nil, rows, 80)

	assert.Equal(t, 18, report.PresentCount)
	assert.Equal(t, 2, report.JustifiedCount)
	assert.Equal(t, 4, report.AbsentCount)
	assert.Equal(t, 1, report.TemporalCount)
	assert.Equal(t, 0, report.TardyCount)
	// (18 present + 1 temporal) / 25 days.
	assert.InDelta(t, 76.0, report.AttendancePercentage, 0.0001)
	assert.InDelta(t, 24.0, report.AbsencePercentage, 0.0001)
	assert.True(t, report.IsAtRisk)
	assert.Equal(t, 1, report.ConsecutiveAbsences)
}

func TestBuildReportEmptyHistory(t *testing.T) {
	report := buildReport("enr-1", "cycle-1", nil, nil, 80)

	assert.InDelta(t, 100.0, report.AttendancePercentage, 0.0001)
	assert.InDelta(t, 0.0, report.AbsencePercentage, 0.0001)
	assert.False(t, report.IsAtRisk)
	assert.Equal(t, 0, report.ConsecutiveAbsences)
}

func TestBuildReportRespectsThreshold(t *testing.T) {
	rows := []models.ClassAttendanceRow{
		row(1, "P", false, false, false),
		row(2, "P", false, false, false),
		row(3, "P", false, false, false),
		row(4, "A", true, false, false),
	}

	// 75% attendance: at risk against 80, safe against 70.
	assert.True(t, buildReport("enr-1", "cycle-1", nil, rows, 80).IsAtRisk)
	assert.False(t, buildReport("enr-1", "cycle-1", nil, rows, 70).IsAtRisk)
}

func TestTrailingAbsenceRun(t *testing.T) {
	t.Run("trailing absences counted", func(t *testing.T) {
		rows := []models.ClassAttendanceRow{
			row(1, "P", false, false, false),
			row(2, "A", true, false, false),
			row(3, "A", true, false, false),
		}
		assert.Equal(t, 2, trailingAbsenceRun(rows))
	})

	t.Run("presence resets the run", func(t *testing.T) {
		rows := []models.ClassAttendanceRow{
			row(1, "A", true, false, false),
			row(2, "P", false, false, false),
		}
		assert.Equal(t, 0, trailingAbsenceRun(rows))
	})

	t.Run("mixed day does not count", func(t *testing.T) {
		rows := []models.ClassAttendanceRow{
			row(4, "A", true, false, false),
			row(5, "A", true, false, false),
			row(5, "P", false, false, false),
		}
		assert.Equal(t, 0, trailingAbsenceRun(rows))
	})

	t.Run("multi-record absent days count once", func(t *testing.T) {
		rows := []models.ClassAttendanceRow{
			row(6, "A", true, false, false),
			row(6, "A", true, false, false),
			row(7, "A", true, false, false),
		}
		assert.Equal(t, 2, trailingAbsenceRun(rows))
	})

	t.Run("justified absence breaks the run", func(t *testing.T) {
		rows := []models.ClassAttendanceRow{
			row(8, "A", true, false, false),
			row(9, "J", true, true, false),
			row(10, "A", true, false, false),
		}
		assert.Equal(t, 1, trailingAbsenceRun(rows))
	})
}

func TestRecalculateTxCountsCreatedReports(t *testing.T) {
	f := newRegistrarFixture()
	tx := f.store.tx
	tx.preexisting["enr-a"] = []models.ClassAttendanceRow{row(1, "P", false, false, false)}
	tx.preexisting["enr-b"] = []models.ClassAttendanceRow{row(1, "A", true, false, false)}
	tx.hadReport["enr-a"] = true

	calendar := NewCalendarService(f.calendar, nil)
	svc := NewReportService(f.store, nil, nil, nil, calendar, f.configs, time.Second, time.Minute, nil)

	bimID := "bim-1"
	created, err := svc.RecalculateTx(context.Background(), tx, []string{"enr-a", "enr-b"}, "cycle-1", &bimID)
	require.NoError(t, err)

	assert.Equal(t, 1, created)
	require.Len(t, tx.reports, 2)
	assert.InDelta(t, 100.0, tx.reports["enr-a"].AttendancePercentage, 0.0001)
	assert.InDelta(t, 0.0, tx.reports["enr-b"].AttendancePercentage, 0.0001)
	assert.True(t, tx.reports["enr-b"].IsAtRisk)
	assert.Equal(t, &bimID, tx.reports["enr-b"].BimesterID)
}

type fakeReportFinder struct {
	report *models.AttendanceReport
	err    error
	calls  int
}

func (f *fakeReportFinder) FindByEnrollment(context.Context, string) (*models.AttendanceReport, error) {
	f.calls++
	return f.report, f.err
}

type fakeReportCache struct {
	stored map[string]*models.AttendanceReport
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{stored: map[string]*models.AttendanceReport{}}
}

func (f *fakeReportCache) Get(_ context.Context, enrollmentID string) (*models.AttendanceReport, error) {
	if report, ok := f.stored[enrollmentID]; ok {
		return report, nil
	}
	return nil, appErrors.ErrCacheMiss
}

func (f *fakeReportCache) Set(_ context.Context, report *models.AttendanceReport, _ time.Duration) error {
	f.stored[report.EnrollmentID] = report
	return nil
}

func TestGetReportReadsThroughCache(t *testing.T) {
	f := newRegistrarFixture()
	finder := &fakeReportFinder{report: &models.AttendanceReport{ID: "rep-1", EnrollmentID: "enr-1", AttendancePercentage: 92.5}}
	cache := newFakeReportCache()

	calendar := NewCalendarService(f.calendar, nil)
	svc := NewReportService(f.store, finder, nil, cache, calendar, f.configs, time.Second, time.Minute, nil)

	first, err := svc.GetReport(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, "rep-1", first.ID)
	assert.Equal(t, 1, finder.calls)

	// Second read is served from the cache.
	second, err := svc.GetReport(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, "rep-1", second.ID)
	assert.Equal(t, 1, finder.calls)
}

type fakeEnrollmentFinder struct {
	enrollment *models.Enrollment
	err        error
}

func (f *fakeEnrollmentFinder) FindByID(context.Context, string) (*models.Enrollment, error) {
	return f.enrollment, f.err
}

func TestGetReportNotYetBuilt(t *testing.T) {
	f := newRegistrarFixture()
	finder := &fakeReportFinder{err: sql.ErrNoRows}
	enrollments := &fakeEnrollmentFinder{enrollment: &models.Enrollment{ID: "enr-1", Status: models.EnrollmentStatusActive}}

	calendar := NewCalendarService(f.calendar, nil)
	svc := NewReportService(f.store, finder, enrollments, newFakeReportCache(), calendar, f.configs, time.Second, time.Minute, nil)

	_, err := svc.GetReport(context.Background(), "enr-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Contains(t, appErrors.FromError(err).Message, "no attendance report")
}

func TestGetReportUnknownEnrollment(t *testing.T) {
	f := newRegistrarFixture()
	finder := &fakeReportFinder{err: sql.ErrNoRows}
	enrollments := &fakeEnrollmentFinder{err: sql.ErrNoRows}

	calendar := NewCalendarService(f.calendar, nil)
	svc := NewReportService(f.store, finder, enrollments, newFakeReportCache(), calendar, f.configs, time.Second, time.Minute, nil)

	_, err := svc.GetReport(context.Background(), "enr-gone")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Contains(t, appErrors.FromError(err).Message, "enrollment not found")
}
