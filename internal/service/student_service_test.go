package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/athlete-records-api/internal/dto"
	"github.com/noah-isme/athlete-records-api/internal/form"
	"github.com/noah-isme/athlete-records-api/internal/models"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

// studentGatewayStub keeps created students as nested aggregate documents so a created
// record can be read back through get_student_full_details.
type studentGatewayStub struct {
	mu         sync.Mutex
	documents  map[string]json.RawMessage
	detailsErr error
	createErr  error
	updateErr  error
	created    []dto.CreateStudentParams
	updated    []dto.UpdateStudentParams
	nextRowID  int64

	// block, when set, holds create calls until it is closed; entered is signalled first.
	block   chan struct{}
	entered chan struct{}
}

func newStudentGatewayStub() *studentGatewayStub {
	return &studentGatewayStub{documents: map[string]json.RawMessage{}, nextRowID: 100}
}

func (g *studentGatewayStub) CreateFullStudent(ctx context.Context, params dto.CreateStudentParams) (string, error) {
	if g.block != nil {
		g.entered <- struct{}{}
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, params)
	if g.createErr != nil {
		return "", g.createErr
	}
	id := fmt.Sprintf("00000000-0000-4000-8000-%012d", len(g.created))
	g.documents[params.NationalID] = g.document(id, params)
	return id, nil
}

func (g *studentGatewayStub) UpdateFullStudent(ctx context.Context, params dto.UpdateStudentParams) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updated = append(g.updated, params)
	return g.updateErr
}

func (g *studentGatewayStub) GetStudentFullDetails(ctx context.Context, nationalID string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.detailsErr != nil {
		return nil, g.detailsErr
	}
	return g.documents[nationalID], nil
}

func (g *studentGatewayStub) document(id string, p dto.CreateStudentParams) json.RawMessage {
	tests := make([]dto.PhysicalTestPayload, 0, len(p.PhysicalTests))
	for _, t := range p.PhysicalTests {
		g.nextRowID++
		rowID := g.nextRowID
		t.ID = &rowID
		tests = append(tests, t)
	}
	records := make([]dto.CompetitionRecordPayload, 0, len(p.CompetitionRecords))
	for _, r := range p.CompetitionRecords {
		g.nextRowID++
		rowID := g.nextRowID
		r.ID = &rowID
		records = append(records, r)
	}
	belt := map[string]string(nil)
	if p.Belt != nil {
		belt = map[string]string{"color": *p.Belt}
	}
	doc := map[string]interface{}{
		"estudiante": map[string]interface{}{
			"id":                id,
			"cedula":            p.NationalID,
			"nombres_apellidos": p.FullName,
			"fecha_nacimiento":  p.BirthDate,
			"correo":            p.Email,
			"direccion":         p.Address,
			"carrera_id":        p.MajorID,
			"facultad_id":       p.FacultyID,
		},
		"deportes":           []interface{}{map[string]interface{}{"deporte": map[string]string{"nombre": p.Sport}, "cinta_tipo": belt}},
		"ficha_medica":       p.Medical,
		"tests_fisicos":      tests,
		"records_deportivos": records,
	}
	raw, _ := json.Marshal(doc)
	return raw
}

func (g *studentGatewayStub) seed(t *testing.T, nationalID, raw string) {
	t.Helper()
	g.documents[nationalID] = json.RawMessage(raw)
}

func newStudentService(gw *studentGatewayStub) *StudentService {
	catalogs := NewCatalogService(newCatalogRepoStub(), nil, time.Minute, zap.NewNop())
	svc := NewStudentService(gw, catalogs, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestSearchValidatesInput(t *testing.T) {
	svc := newStudentService(newStudentGatewayStub())

	_, err := svc.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, "please enter a valid national ID", appErrors.FromError(err).Message)
}

func TestSearchOutcomes(t *testing.T) {
	gw := newStudentGatewayStub()
	gw.seed(t, "0601234567", nestedAggregate)
	svc := newStudentService(gw)

	found, err := svc.Search(context.Background(), " 0601234567 ")
	require.NoError(t, err)
	assert.Equal(t, &SearchResult{Found: true, NationalID: "0601234567", Path: "/students/0601234567"}, found)

	_, err = svc.Search(context.Background(), "0000000000")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "no student is registered with that national ID", appErrors.FromError(err).Message)

	gw.detailsErr = errors.New("dial tcp: connection refused")
	_, err = svc.Search(context.Background(), "0601234567")
	assert.True(t, errors.Is(err, appErrors.ErrGateway))
	assert.Equal(t, "connection error, try again", appErrors.FromError(err).Message)
}

func TestDetailComputesAge(t *testing.T) {
	gw := newStudentGatewayStub()
	gw.seed(t, "0601234567", nestedAggregate)
	svc := newStudentService(gw)

	view, err := svc.Detail(context.Background(), "0601234567")
	require.NoError(t, err)
	require.NotNil(t, view.Age)
	assert.Equal(t, 23, *view.Age)
}

func TestDetailSurfacesGatewayMessage(t *testing.T) {
	gw := newStudentGatewayStub()
	gw.detailsErr = errors.New("function get_student_full_details(text) does not exist")
	svc := newStudentService(gw)

	_, err := svc.Detail(context.Background(), "0601234567")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrGateway))
	assert.Contains(t, appErrors.FromError(err).Message, "does not exist")
}

func judoWorkingCopy() form.WorkingCopy {
	return form.WorkingCopy{
		Student: form.StudentFields{
			NationalID: "0605555555",
			FullName:   "María Cáceres",
			Email:      "maria@example.test",
			BirthDate:  "2001-09-01",
			FacultyID:  1,
			MajorID:    11,
		},
		Medical: form.MedicalFields{BloodType: "A+"},
		Sport:   "Judo",
		Belt:    "Azul",
		PhysicalTests: []form.PhysicalTestRow{
			{PhysicalTest: form.PhysicalTest{Category: models.TestCategoryStrength, Name: "Press banca", Unit: "kg", Result: "60"}},
		},
		CompetitionRecords: []form.CompetitionRecordRow{
			{CompetitionRecord: form.CompetitionRecord{Name: "Interpolitécnicos", Date: "2024-04-20", Result: models.CompetitionResultSilver, Placement: models.PlacementOf(2)}},
		},
	}
}

func TestCreateThenDetailRoundTrip(t *testing.T) {
	gw := newStudentGatewayStub()
	svc := newStudentService(gw)

	result, err := svc.Create(context.Background(), judoWorkingCopy())
	require.NoError(t, err)
	assert.Equal(t, "/students/0605555555", result.Path)
	require.Len(t, gw.created, 1)
	assert.Empty(t, gw.created[0].Medical.Pathologies)

	view, err := svc.Detail(context.Background(), result.NationalID)
	require.NoError(t, err)
	assert.Equal(t, []models.SportEnrollment{{Sport: "Judo", Belt: "Azul"}}, view.Sports)
	require.Len(t, view.PhysicalTests, 1)
	assert.Equal(t, "Press banca", view.PhysicalTests[0].Name)
	assert.Equal(t, models.TestCategoryStrength, view.PhysicalTests[0].Category)
	require.Len(t, view.CompetitionRecords, 1)
	assert.Equal(t, models.CompetitionResultSilver, view.CompetitionRecords[0].Result)
	assert.Equal(t, models.PlacementOf(2), view.CompetitionRecords[0].Placement)
	require.NotNil(t, view.Medical)
	assert.Equal(t, models.BloodTypeAPos, view.Medical.BloodType)
	require.NotNil(t, view.Age)
	assert.Equal(t, 22, *view.Age)
}

func TestCreateDuplicateNationalID(t *testing.T) {
	gw := newStudentGatewayStub()
	gw.createErr = errors.New(`duplicate key value violates unique constraint "estudiantes_cedula_key"`)
	svc := newStudentService(gw)

	_, err := svc.Create(context.Background(), judoWorkingCopy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateNationalID))
	assert.NotEqual(t, "connection error, try again", appErrors.FromError(err).Message)
}

func TestCreateValidationSkipsGateway(t *testing.T) {
	gw := newStudentGatewayStub()
	svc := newStudentService(gw)

	state := judoWorkingCopy()
	state.Sport = ""
	_, err := svc.Create(context.Background(), state)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, gw.created)
}

func TestUpdateReconcilesAgainstLoadedRecord(t *testing.T) {
	gw := newStudentGatewayStub()
	gw.seed(t, "0601234567", `{
		"estudiante": {"id": "0b8f3c2a-1111-4c1e-9a59-6a4f7d2e9c01", "cedula": "0601234567", "nombres_apellidos": "Ana Pérez", "carrera_id": 10, "facultad_id": 1},
		"deportes": [{"deporte": {"nombre": "Judo"}, "cinta_tipo": {"color": "Azul"}}],
		"tests_fisicos": [
			{"id": 5, "categoria": "velocidad", "prueba": "100m", "unidad": "s", "resultado": "12.4"},
			{"id": 6, "categoria": "fuerza", "prueba": "Sentadilla", "unidad": "kg", "resultado": "80"}
		],
		"records_deportivos": []
	}`)
	svc := newStudentService(gw)

	five := int64(5)
	state := form.WorkingCopy{
		Student: form.StudentFields{NationalID: "0601234567", FullName: "Ana Pérez", FacultyID: 1, MajorID: 10},
		Sport:   "Judo",
		Belt:    "Azul",
		PhysicalTests: []form.PhysicalTestRow{
			{ID: &five, PhysicalTest: form.PhysicalTest{Category: models.TestCategorySpeed, Name: "100m", Unit: "s", Result: "12.4"}},
			{PhysicalTest: form.PhysicalTest{Category: models.TestCategoryEndurance, Name: "T3", Unit: "min", Result: "11"}},
		},
	}

	result, err := svc.Update(context.Background(), "0601234567", state)
	require.NoError(t, err)
	assert.Equal(t, "0601234567", result.NationalID)

	require.Len(t, gw.updated, 1)
	params := gw.updated[0]
	assert.Equal(t, "0b8f3c2a-1111-4c1e-9a59-6a4f7d2e9c01", params.StudentID)
	assert.Equal(t, []int64{6}, params.TestsToDelete)
	require.Len(t, params.TestsToAdd, 1)
	assert.Equal(t, "T3", params.TestsToAdd[0].Name)
	assert.Empty(t, params.TestsToUpdate)
	assert.Empty(t, params.RecordsToDelete)
}

func TestUpdateRejectsRowsFromAnotherRecord(t *testing.T) {
	gw := newStudentGatewayStub()
	gw.seed(t, "0601234567", nestedAggregate)
	svc := newStudentService(gw)

	foreign := int64(77)
	state := form.WorkingCopy{
		Student:       form.StudentFields{FullName: "Ana Pérez", FacultyID: 1, MajorID: 10},
		Sport:         "Judo",
		PhysicalTests: []form.PhysicalTestRow{{ID: &foreign, PhysicalTest: form.PhysicalTest{Category: models.TestCategorySpeed, Name: "x"}}},
	}
	_, err := svc.Update(context.Background(), "0601234567", state)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, gw.updated)
}

func TestUpdateUnknownStudent(t *testing.T) {
	svc := newStudentService(newStudentGatewayStub())
	_, err := svc.Update(context.Background(), "0000000000", form.WorkingCopy{Sport: "Judo"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
