package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	"github.com/ColegioIDS/ids-attendance-api/internal/repository"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
)

// fakeTx implements repository.AttendanceTx in memory. Rows listed for
// recalculation are derived from the records inserted in the same
// transaction plus any preexisting rows.
type fakeTx struct {
	existing    map[string]bool
	preexisting map[string][]models.ClassAttendanceRow
	inserted    []models.ClassAttendance
	reports     map[string]*models.AttendanceReport
	hadReport   map[string]bool
	flags       map[string]models.AttendanceStatus
	insertErr   error
	failAfter   int
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		existing:    map[string]bool{},
		preexisting: map[string][]models.ClassAttendanceRow{},
		reports:     map[string]*models.AttendanceReport{},
		hadReport:   map[string]bool{},
		flags:       map[string]models.AttendanceStatus{},
	}
}

func (t *fakeTx) ExistsForDate(_ context.Context, enrollmentID string, _ time.Time) (bool, error) {
	return t.existing[enrollmentID], nil
}

// InsertClassAttendance fails with insertErr once failAfter rows have been
// written, so tests can break a batch partway through.
func (t *fakeTx) InsertClassAttendance(_ context.Context, record *models.ClassAttendance) error {
	if t.insertErr != nil && len(t.inserted) >= t.failAfter {
		return t.insertErr
	}
	t.inserted = append(t.inserted, *record)
	return nil
}

func (t *fakeTx) ListRowsForEnrollment(_ context.Context, enrollmentID string, _, _ *time.Time) ([]models.ClassAttendanceRow, error) {
	rows := append([]models.ClassAttendanceRow{}, t.preexisting[enrollmentID]...)
	for _, rec := range t.inserted {
		if rec.EnrollmentID != enrollmentID {
			continue
		}
		flags := t.flags[rec.StatusCode]
		rows = append(rows, models.ClassAttendanceRow{
			ID:           rec.ID,
			EnrollmentID: rec.EnrollmentID,
			Date:         rec.Date,
			StatusCode:   rec.StatusCode,
			IsNegative:   flags.IsNegative,
			IsExcused:    flags.IsExcused,
			IsTemporal:   flags.IsTemporal,
		})
	}
	return rows, nil
}

func (t *fakeTx) UpsertReport(_ context.Context, report *models.AttendanceReport) (bool, error) {
	created := !t.hadReport[report.EnrollmentID]
	t.hadReport[report.EnrollmentID] = true
	t.reports[report.EnrollmentID] = report
	return created, nil
}

// fakeStore runs the transaction callback against a fakeTx and records
// whether the callback failed, i.e. whether a real store would roll back.
type fakeStore struct {
	tx         *fakeTx
	rolledBack bool
}

func (f *fakeStore) RunInTx(_ context.Context, _ time.Duration, fn func(tx repository.AttendanceTx) error) error {
	if err := fn(f.tx); err != nil {
		f.rolledBack = true
		return err
	}
	return nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, ids []string) {
	f.invalidated = append(f.invalidated, ids...)
}

type registrarFixture struct {
	*validatorFixture
	store *fakeStore
	cache *fakeInvalidator
	svc   *AttendanceService
}

func newRegistrarFixture() *registrarFixture {
	vf := newValidatorFixture()
	store := &fakeStore{tx: newFakeTx()}
	store.tx.flags[models.StatusCodePresent] = models.AttendanceStatus{Code: models.StatusCodePresent}
	cache := &fakeInvalidator{}

	calendar := NewCalendarService(vf.calendar, nil)
	reports := NewReportService(store, nil, nil, nil, calendar, vf.configs, time.Second, time.Minute, nil)
	svc := NewAttendanceService(vf.validator, store, reports, cache, nil, time.Second, nil)

	return &registrarFixture{validatorFixture: vf, store: store, cache: cache, svc: svc}
}

func manyEnrollments(n int) []models.EnrollmentDetail {
	out := make([]models.EnrollmentDetail, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.EnrollmentDetail{
			Enrollment:  models.Enrollment{ID: fmt.Sprintf("enr-%d", i), SectionID: "section-1", CycleID: "cycle-1", Status: models.EnrollmentStatusActive},
			StudentName: fmt.Sprintf("Student %d", i),
		})
	}
	return out
}

func TestRegisterBulkWritesOneRecordPerEnrollmentAndSchedule(t *testing.T) {
	f := newRegistrarFixture()
	f.enrollments.enrollments = manyEnrollments(30)
	f.schedules.schedules = []models.Schedule{
		{ID: "sched-1", CourseAssignmentID: "ca-1", DayOfWeek: 1, IsActive: true},
		{ID: "sched-2", CourseAssignmentID: "ca-2", DayOfWeek: 1, IsActive: true},
		{ID: "sched-3", CourseAssignmentID: "ca-3", DayOfWeek: 1, IsActive: true},
	}

	result, err := f.svc.RegisterBulk(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 30, result.CreatedAttendances)
	assert.Equal(t, 90, result.CreatedClassAttendances)
	assert.Equal(t, 30, result.CreatedReports)
	assert.Len(t, f.store.tx.inserted, 90)
	assert.Len(t, f.store.tx.reports, 30)
	assert.Len(t, f.cache.invalidated, 30)
}

func TestRegisterBulkDuplicateAbortsWholeSubmission(t *testing.T) {
	f := newRegistrarFixture()
	f.enrollments.enrollments = manyEnrollments(5)
	// The third student already has a record for the date.
	f.store.tx.existing["enr-2"] = true

	result, err := f.svc.RegisterBulk(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, appErrors.ErrDuplicateRecord.Code, appErrors.FromError(err).Code)
	assert.True(t, f.store.rolledBack)
	assert.Empty(t, f.cache.invalidated)
}

func TestRegisterBulkInsertFailureAbortsWholeSubmission(t *testing.T) {
	f := newRegistrarFixture()
	f.enrollments.enrollments = manyEnrollments(10)
	// The write phase breaks on the seventh row.
	f.store.tx.insertErr = fmt.Errorf("deadlock detected")
	f.store.tx.failAfter = 6

	result, err := f.svc.RegisterBulk(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.True(t, f.store.rolledBack)
	assert.Len(t, f.store.tx.inserted, 6)
	assert.Empty(t, f.store.tx.reports)
	assert.Empty(t, f.cache.invalidated)
}

func TestRegisterBulkAppliesCourseAssignmentFilter(t *testing.T) {
	f := newRegistrarFixture()
	f.schedules.schedules = []models.Schedule{
		{ID: "sched-1", CourseAssignmentID: "ca-1", DayOfWeek: 1, IsActive: true},
		{ID: "sched-2", CourseAssignmentID: "ca-2", DayOfWeek: 1, IsActive: true},
	}
	sub := validSubmission()
	sub.CourseAssignmentIDs = []string{"ca-2"}

	result, err := f.svc.RegisterBulk(context.Background(), sub)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "sched-2", result.Records[0].ScheduleID)
}

func TestRegisterBulkRejectsFilterMatchingNothing(t *testing.T) {
	f := newRegistrarFixture()
	sub := validSubmission()
	sub.CourseAssignmentIDs = []string{"ca-unknown"}

	_, err := f.svc.RegisterBulk(context.Background(), sub)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoSchedules.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.store.tx.inserted)
}

func TestRegisterBulkRecordsCarrySubmissionFields(t *testing.T) {
	f := newRegistrarFixture()
	arrival := "08:25"
	notes := "arrived after assembly"
	sub := validSubmission()
	sub.ArrivalTime = &arrival
	sub.Notes = &notes

	result, err := f.svc.RegisterBulk(context.Background(), sub)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "status-p", rec.AttendanceStatusID)
	assert.Equal(t, models.StatusCodePresent, rec.StatusCode)
	assert.Equal(t, &arrival, rec.ArrivalTime)
	assert.Equal(t, &notes, rec.Notes)
	assert.Equal(t, "user-1", rec.RecordedBy)
	// 25 minutes past the 08:00 threshold.
	assert.Equal(t, 25, result.MinutesLate)
}

func TestRegisterBulkValidationFailureSkipsWrites(t *testing.T) {
	f := newRegistrarFixture()
	f.absences.onLeave = true

	_, err := f.svc.RegisterBulk(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTeacherOnLeave.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.store.tx.inserted)
	assert.False(t, f.store.rolledBack)
}

func TestLateMinutes(t *testing.T) {
	cases := []struct {
		name      string
		arrival   string
		threshold string
		tardyMark int
		want      int
	}{
		{"on time", "07:55", "08:00", 10, 0},
		{"exactly on threshold", "08:00", "08:00", 10, 0},
		{"late below tardy mark", "08:05", "08:00", 10, 0},
		{"late at tardy mark", "08:10", "08:00", 10, 10},
		{"very late", "09:30", "08:00", 10, 90},
		{"unparseable arrival", "morning", "08:00", 10, 0},
		{"unparseable threshold", "08:30", "?", 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, lateMinutes(tc.arrival, tc.threshold, tc.tardyMark))
		})
	}
}

func TestFilterSchedules(t *testing.T) {
	schedules := []models.Schedule{
		{ID: "s1", CourseAssignmentID: "ca-1"},
		{ID: "s2", CourseAssignmentID: "ca-2"},
	}

	assert.Len(t, filterSchedules(schedules, nil), 2)
	assert.Len(t, filterSchedules(schedules, []string{"ca-1"}), 1)
	assert.Empty(t, filterSchedules(schedules, []string{"ca-9"}))
}
