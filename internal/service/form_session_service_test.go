package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/athlete-records-api/internal/form"
	"github.com/noah-isme/athlete-records-api/internal/models"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

func newFormSessionService(gw *studentGatewayStub, ttl time.Duration) *FormSessionService {
	catalogs := NewCatalogService(newCatalogRepoStub(), nil, time.Minute, zap.NewNop())
	students := NewStudentService(gw, catalogs, nil, nil, zap.NewNop())
	return NewFormSessionService(catalogs, students, gw, nil, NewMetricsService(), ttl, zap.NewNop())
}

func fillCreateForm(t *testing.T, svc *FormSessionService, id string) {
	t.Helper()
	steps := []struct {
		section form.Section
		field   string
		value   string
	}{
		{form.SectionStudent, "national_id", "0605555555"},
		{form.SectionStudent, "full_name", "María Cáceres"},
		{form.SectionSelection, "faculty_id", "1"},
		{form.SectionSelection, "major_id", "11"},
		{form.SectionSelection, "sport", "Judo"},
		{form.SectionSelection, "belt", "Azul"},
	}
	for _, step := range steps {
		_, err := svc.UpdateField(id, step.section, step.field, step.value)
		require.NoError(t, err, step.field)
	}
}

func TestFormSessionCreateLifecycle(t *testing.T) {
	gw := newStudentGatewayStub()
	svc := newFormSessionService(gw, time.Minute)
	ctx := context.Background()

	state, err := svc.Open(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, form.ModeCreate, state.Mode)
	assert.Equal(t, form.PhaseReady, state.Phase)
	assert.Len(t, state.Catalogs.Sports, 4)
	assert.Equal(t, 1, svc.metrics.Snapshot().OpenFormSessions)

	fillCreateForm(t, svc, state.ID)
	state, err = svc.AddPhysicalTest(state.ID)
	require.NoError(t, err)
	require.Len(t, state.PhysicalTests, 1)
	assert.Equal(t, models.TestCategorySpeed, state.PhysicalTests[0].Category)
	assert.Len(t, state.AvailableMajors, 2)

	state, err = svc.SetPhysicalTest(state.ID, 0, RowFields{Category: "fuerza", Name: "Press banca", Unit: "kg", Result: "60"})
	require.NoError(t, err)
	state, err = svc.AddCompetitionRecord(state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompetitionResultOther, state.CompetitionRecords[0].Result)
	_, err = svc.RemoveCompetitionRecord(state.ID, 0)
	require.NoError(t, err)

	result, err := svc.Submit(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, &SubmitResult{NationalID: "0605555555", Path: "/students/0605555555"}, result)

	require.Len(t, gw.created, 1)
	assert.Equal(t, "Judo", gw.created[0].Sport)
	require.Len(t, gw.created[0].PhysicalTests, 1)
	assert.Equal(t, "fuerza", gw.created[0].PhysicalTests[0].Category)
	assert.Empty(t, gw.created[0].CompetitionRecords)

	_, err = svc.Get(state.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 0, svc.metrics.Snapshot().OpenFormSessions)
}

func TestFormSessionEditQueuesRemovedRows(t *testing.T) {
	gw := newStudentGatewayStub()
	gw.seed(t, "0601234567", nestedAggregate)
	svc := newFormSessionService(gw, time.Minute)

	state, err := svc.Open(context.Background(), "0601234567")
	require.NoError(t, err)
	assert.Equal(t, form.ModeEdit, state.Mode)
	assert.Equal(t, "0b8f3c2a-1111-4c1e-9a59-6a4f7d2e9c01", state.StudentID)
	assert.Equal(t, "Judo", state.Sport)
	require.Len(t, state.PhysicalTests, 1)

	state, err = svc.RemovePhysicalTest(state.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, state.PendingDeletes.PhysicalTests)

	_, err = svc.UpdateField(state.ID, form.SectionStudent, "national_id", "0609999999")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Submit(context.Background(), state.ID)
	require.NoError(t, err)
	require.Len(t, gw.updated, 1)
	assert.Equal(t, []int64{5}, gw.updated[0].TestsToDelete)
}

func TestFormSessionOpenUnknownStudent(t *testing.T) {
	svc := newFormSessionService(newStudentGatewayStub(), time.Minute)

	_, err := svc.Open(context.Background(), "0000000000")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 0, svc.store.Len())
}

func TestFormSessionFailedSubmitKeepsForm(t *testing.T) {
	gw := newStudentGatewayStub()
	gw.createErr = errors.New(`duplicate key value violates unique constraint "estudiantes_cedula_key"`)
	svc := newFormSessionService(gw, time.Minute)

	state, err := svc.Open(context.Background(), "")
	require.NoError(t, err)
	fillCreateForm(t, svc, state.ID)

	_, err = svc.Submit(context.Background(), state.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateNationalID))

	state, err = svc.Get(state.ID)
	require.NoError(t, err)
	assert.Equal(t, form.PhaseReady, state.Phase)
	assert.Equal(t, "María Cáceres", state.Student.FullName)
	assert.NotEmpty(t, state.LastError)

	gw.createErr = nil
	_, err = svc.Submit(context.Background(), state.ID)
	assert.NoError(t, err)
}

func TestFormSessionRejectsChangesWhileSubmitting(t *testing.T) {
	gw := newStudentGatewayStub()
	gw.block = make(chan struct{})
	gw.entered = make(chan struct{}, 1)
	svc := newFormSessionService(gw, time.Minute)

	state, err := svc.Open(context.Background(), "")
	require.NoError(t, err)
	fillCreateForm(t, svc, state.ID)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), state.ID)
		done <- err
	}()
	<-gw.entered

	current, err := svc.Get(state.ID)
	require.NoError(t, err)
	assert.Equal(t, form.PhaseSubmitting, current.Phase)

	_, err = svc.AddPhysicalTest(state.ID)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	_, err = svc.Submit(context.Background(), state.ID)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	close(gw.block)
	require.NoError(t, <-done)
	assert.Len(t, gw.created, 1)
}

func TestFormSessionExpiresAfterInactivity(t *testing.T) {
	svc := newFormSessionService(newStudentGatewayStub(), time.Minute)
	now := time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)
	svc.store.now = func() time.Time { return now }

	state, err := svc.Open(context.Background(), "")
	require.NoError(t, err)

	now = now.Add(50 * time.Second)
	_, err = svc.Get(state.ID)
	require.NoError(t, err)

	now = now.Add(50 * time.Second)
	_, err = svc.Get(state.ID)
	require.NoError(t, err, "reads extend the session")

	now = now.Add(2 * time.Minute)
	_, err = svc.Get(state.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestFormSessionSweepOnOpen(t *testing.T) {
	svc := newFormSessionService(newStudentGatewayStub(), time.Minute)
	now := time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)
	svc.store.now = func() time.Time { return now }

	_, err := svc.Open(context.Background(), "")
	require.NoError(t, err)
	now = now.Add(5 * time.Minute)
	_, err = svc.Open(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, svc.store.Len())
}

func TestFormSessionClose(t *testing.T) {
	svc := newFormSessionService(newStudentGatewayStub(), time.Minute)

	state, err := svc.Open(context.Background(), "")
	require.NoError(t, err)
	svc.Close(state.ID)
	svc.Close("unknown")

	_, err = svc.Get(state.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
