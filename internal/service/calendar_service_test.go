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

func TestResolveReturnsFullContext(t *testing.T) {
	repo := &fakeCalendarRepo{
		cycle:    &models.SchoolCycle{ID: "cycle-1", IsActive: true},
		bimester: &models.Bimester{ID: "bim-1", CycleID: "cycle-1"},
		holiday:  &models.Holiday{ID: "hol-1", BimesterID: "bim-1", IsRecovered: true},
		week:     &models.AcademicWeek{ID: "week-1", BimesterID: "bim-1", WeekType: models.WeekTypeRegular},
	}
	svc := NewCalendarService(repo, nil)

	tc, err := svc.Resolve(context.Background(), time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "cycle-1", tc.Cycle.ID)
	assert.Equal(t, "bim-1", tc.Bimester.ID)
	assert.NotNil(t, tc.Holiday)
	assert.NotNil(t, tc.Week)
}

func TestResolveWithoutCycle(t *testing.T) {
	repo := &fakeCalendarRepo{cycleErr: sql.ErrNoRows}
	svc := NewCalendarService(repo, nil)

	_, err := svc.Resolve(context.Background(), time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoActiveCycle.Code, appErrors.FromError(err).Code)
}

func TestResolveWithoutBimester(t *testing.T) {
	repo := &fakeCalendarRepo{
		cycle:       &models.SchoolCycle{ID: "cycle-1", IsActive: true},
		bimesterErr: sql.ErrNoRows,
	}
	svc := NewCalendarService(repo, nil)

	_, err := svc.Resolve(context.Background(), time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoActiveBimester.Code, appErrors.FromError(err).Code)
}

func TestResolveOrdinaryDayHasNoHolidayOrBreak(t *testing.T) {
	repo := &fakeCalendarRepo{
		cycle:    &models.SchoolCycle{ID: "cycle-1", IsActive: true},
		bimester: &models.Bimester{ID: "bim-1", CycleID: "cycle-1"},
	}
	svc := NewCalendarService(repo, nil)

	tc, err := svc.Resolve(context.Background(), time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, tc.Holiday)
	assert.Nil(t, tc.Week)
}

func TestResolveBimesterExplicit(t *testing.T) {
	repo := &fakeCalendarRepo{bimester: &models.Bimester{ID: "bim-2", CycleID: "cycle-1", Number: 2}}
	svc := NewCalendarService(repo, nil)

	id := "bim-2"
	bim, err := svc.ResolveBimester(context.Background(), "cycle-1", &id)
	require.NoError(t, err)
	assert.Equal(t, 2, bim.Number)
}

func TestResolveBimesterFallsBackToActive(t *testing.T) {
	repo := &fakeCalendarRepo{activeBimester: &models.Bimester{ID: "bim-1", CycleID: "cycle-1", IsActive: true}}
	svc := NewCalendarService(repo, nil)

	bim, err := svc.ResolveBimester(context.Background(), "cycle-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "bim-1", bim.ID)
}

func TestResolveBimesterNoneActive(t *testing.T) {
	repo := &fakeCalendarRepo{}
	svc := NewCalendarService(repo, nil)

	bim, err := svc.ResolveBimester(context.Background(), "cycle-1", nil)
	require.NoError(t, err)
	assert.Nil(t, bim)
}
