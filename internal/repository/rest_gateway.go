package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/noah-isme/athlete-records-api/internal/dto"
	"github.com/noah-isme/athlete-records-api/internal/models"
	"github.com/noah-isme/athlete-records-api/pkg/postgrest"
)

// RESTGateway reaches the data service through its hosted REST/RPC interface. It serves
// the same calls as StudentGateway, CatalogRepository and StudentListRepository.
type RESTGateway struct {
	client   *postgrest.Client
	observer CallObserver
}

// NewRESTGateway constructs a RESTGateway.
func NewRESTGateway(client *postgrest.Client, observer CallObserver) *RESTGateway {
	return &RESTGateway{client: client, observer: observerOrNoop(observer)}
}

// CreateFullStudent calls create_full_student and returns the new internal id.
func (g *RESTGateway) CreateFullStudent(ctx context.Context, params dto.CreateStudentParams) (id string, err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcCreateFullStudent, start, err) }()

	var raw json.RawMessage
	if err = g.client.RPC(ctx, ProcCreateFullStudent, params, &raw); err != nil {
		return "", gatewayFailure("create full student", err)
	}
	var newID dto.FlexString
	if len(raw) > 0 {
		if err = json.Unmarshal(raw, &newID); err != nil {
			return "", gatewayFailure("decode new student id", err)
		}
	}
	return string(newID), nil
}

// UpdateFullStudent calls update_full_student.
func (g *RESTGateway) UpdateFullStudent(ctx context.Context, params dto.UpdateStudentParams) (err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcUpdateFullStudent, start, err) }()

	params.TestsToDelete = nonNilIDs(params.TestsToDelete)
	params.RecordsToDelete = nonNilIDs(params.RecordsToDelete)
	if err = g.client.RPC(ctx, ProcUpdateFullStudent, params, nil); err != nil {
		return gatewayFailure("update full student", err)
	}
	return nil
}

// DeleteStudent calls delete_student.
func (g *RESTGateway) DeleteStudent(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcDeleteStudent, start, err) }()

	if err = g.client.RPC(ctx, ProcDeleteStudent, dto.DeleteStudentParams{StudentID: id}, nil); err != nil {
		return gatewayFailure("delete student", err)
	}
	return nil
}

// GetStudentFullDetails returns the raw aggregate document for a national ID.
func (g *RESTGateway) GetStudentFullDetails(ctx context.Context, nationalID string) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcGetStudentFullDetails, start, err) }()

	if err = g.client.RPC(ctx, ProcGetStudentFullDetails, dto.StudentLookupParams{NationalID: nationalID}, &raw); err != nil {
		return nil, gatewayFailure("get student full details", err)
	}
	return raw, nil
}

// ListSports reads sport names ordered alphabetically.
func (g *RESTGateway) ListSports(ctx context.Context) (sports []string, err error) {
	start := time.Now()
	defer func() { observe(g.observer, TableSports, start, err) }()

	var rows []struct {
		Nombre string `json:"nombre"`
	}
	if err = g.client.Select(ctx, TableSports, "nombre", "nombre.asc", &rows); err != nil {
		return nil, gatewayFailure("list sports", err)
	}
	sports = make([]string, 0, len(rows))
	for _, row := range rows {
		sports = append(sports, row.Nombre)
	}
	return sports, nil
}

// ListBelts reads belt colours in rank order.
func (g *RESTGateway) ListBelts(ctx context.Context) (belts []string, err error) {
	start := time.Now()
	defer func() { observe(g.observer, TableBelts, start, err) }()

	var rows []struct {
		Color string `json:"color"`
	}
	if err = g.client.Select(ctx, TableBelts, "color", "id.asc", &rows); err != nil {
		return nil, gatewayFailure("list belts", err)
	}
	belts = make([]string, 0, len(rows))
	for _, row := range rows {
		belts = append(belts, row.Color)
	}
	return belts, nil
}

// ListFaculties calls get_facultades.
func (g *RESTGateway) ListFaculties(ctx context.Context) (faculties []models.Faculty, err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcGetFaculties, start, err) }()

	var rows []struct {
		ID     int64  `json:"id"`
		Nombre string `json:"nombre"`
	}
	if err = g.client.RPC(ctx, ProcGetFaculties, nil, &rows); err != nil {
		return nil, gatewayFailure("list faculties", err)
	}
	faculties = make([]models.Faculty, 0, len(rows))
	for _, row := range rows {
		faculties = append(faculties, models.Faculty{ID: row.ID, Name: row.Nombre})
	}
	return faculties, nil
}

// ListMajors calls get_carreras_con_facultad.
func (g *RESTGateway) ListMajors(ctx context.Context) (majors []models.Major, err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcGetMajors, start, err) }()

	var rows []struct {
		ID             int64  `json:"id"`
		Nombre         string `json:"nombre"`
		FacultadID     int64  `json:"facultad_id"`
		FacultadNombre string `json:"facultad_nombre"`
	}
	if err = g.client.RPC(ctx, ProcGetMajors, nil, &rows); err != nil {
		return nil, gatewayFailure("list majors", err)
	}
	majors = make([]models.Major, 0, len(rows))
	for _, row := range rows {
		majors = append(majors, models.Major{ID: row.ID, Name: row.Nombre, FacultyID: row.FacultadID, FacultyName: row.FacultadNombre})
	}
	return majors, nil
}

// ListStudents reads the denormalized list view ordered by name.
func (g *RESTGateway) ListStudents(ctx context.Context) (items []models.StudentListItem, err error) {
	start := time.Now()
	defer func() { observe(g.observer, ViewStudentsList, start, err) }()

	var rows []dto.StudentListRow
	if err = g.client.Select(ctx, ViewStudentsList, "*", "nombres_apellidos.asc", &rows); err != nil {
		return nil, gatewayFailure("list students", err)
	}
	items = make([]models.StudentListItem, 0, len(rows))
	for _, row := range rows {
		item := models.StudentListItem{
			ID:         row.ID,
			NationalID: row.Cedula,
			FullName:   row.NombresApellido,
			Age:        row.Edad,
			Sports:     nonBlank(row.Deportes),
			Belts:      nonBlank(row.Cintas),
		}
		if row.Carrera != nil {
			item.Major = *row.Carrera
		}
		items = append(items, item)
	}
	return items, nil
}

func nonBlank(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			result = append(result, v)
		}
	}
	return result
}
