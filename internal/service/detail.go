package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/athlete-records-api/internal/dto"
	"github.com/noah-isme/athlete-records-api/internal/models"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// StudentView is the flat, display-ready rendering of an aggregate.
type StudentView struct {
	Student            models.Student             `json:"student"`
	Age                *int                       `json:"age"`
	Sports             []models.SportEnrollment   `json:"sports"`
	Medical            *models.MedicalRecord      `json:"medical"`
	PhysicalTests      []models.PhysicalTest      `json:"physical_tests"`
	CompetitionRecords []models.CompetitionRecord `json:"competition_records"`
}

// Age returns the completed years between birth and now.
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

// ToView maps an aggregate into its display model. Age is nil when the birth date is
// missing or unreadable.
func ToView(agg *models.Aggregate, now time.Time) StudentView {
	view := StudentView{
		Student:            agg.Student,
		Sports:             agg.Sports,
		Medical:            agg.Medical,
		PhysicalTests:      agg.PhysicalTests,
		CompetitionRecords: agg.CompetitionRecords,
	}
	if birth, err := time.Parse(dateLayout, agg.Student.BirthDate); err == nil {
		age := Age(birth, now)
		view.Age = &age
	}
	return view
}

func studentNotFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

// DecodeAggregate reads the document returned by get_student_full_details. It accepts a
// bare aggregate, a {data, error} wrapper and a one-element array, in nested or flat form.
// A missing document, an embedded error and a document without a national ID all yield a
// NOT_FOUND error.
func DecodeAggregate(raw json.RawMessage) (*models.Aggregate, error) {
	return decodeAggregate(raw, 0)
}

func decodeAggregate(raw json.RawMessage, depth int) (*models.Aggregate, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || depth > 2 {
		return nil, studentNotFound()
	}

	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode aggregate list: %w", err)
		}
		if len(items) == 0 {
			return nil, studentNotFound()
		}
		return decodeAggregate(items[0], depth+1)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decode aggregate: %w", err)
	}
	if isEnvelope(keys) {
		var env dto.AggregateEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode aggregate envelope: %w", err)
		}
		if msg := embeddedError(env.Error); msg != "" {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msg)
		}
		return decodeAggregate(env.Data, depth+1)
	}

	var doc dto.AggregateDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode aggregate: %w", err)
	}
	return aggregateFromDocument(doc)
}

func isEnvelope(keys map[string]json.RawMessage) bool {
	_, hasData := keys["data"]
	_, hasError := keys["error"]
	_, hasStudent := keys["estudiante"]
	_, hasID := keys["cedula"]
	return (hasData || hasError) && !hasStudent && !hasID
}

func embeddedError(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var body dto.GatewayErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return string(raw)
}

func aggregateFromDocument(doc dto.AggregateDocument) (*models.Aggregate, error) {
	student := doc.StudentDocument
	if doc.Estudiante != nil {
		student = *doc.Estudiante
	}
	if strings.TrimSpace(student.Cedula) == "" {
		return nil, studentNotFound()
	}

	agg := &models.Aggregate{
		Student:            studentFromDocument(student),
		Sports:             enrollmentsFromDocument(doc),
		PhysicalTests:      make([]models.PhysicalTest, 0, len(doc.TestsFisicos)),
		CompetitionRecords: make([]models.CompetitionRecord, 0, len(doc.RecordsDeportivos)),
	}
	if doc.FichaMedica != nil {
		agg.Medical = &models.MedicalRecord{
			BloodType:   models.BloodType(deref(doc.FichaMedica.TipoSangre)),
			Pathologies: deref(doc.FichaMedica.Patologias),
			LastCheckup: dateOnly(deref(doc.FichaMedica.UltimaConsultaMedica)),
		}
	}
	for _, t := range doc.TestsFisicos {
		recorded := deref(t.FechaPrueba)
		if recorded == "" {
			recorded = deref(t.CreatedAt)
		}
		agg.PhysicalTests = append(agg.PhysicalTests, models.PhysicalTest{
			ID:         int64(t.ID),
			Category:   models.TestCategory(t.Categoria),
			Name:       t.Prueba,
			Unit:       deref(t.Unidad),
			Result:     string(t.Resultado),
			RecordedAt: recorded,
		})
	}
	for _, r := range doc.RecordsDeportivos {
		record := models.CompetitionRecord{
			ID:     int64(r.ID),
			Name:   r.NombreCompetencia,
			Date:   dateOnly(deref(r.FechaCompetencia)),
			Result: models.CompetitionResult(deref(r.Resultado)),
		}
		if r.Puesto != nil {
			record.Placement = models.PlacementOf(*r.Puesto)
		}
		agg.CompetitionRecords = append(agg.CompetitionRecords, record)
	}
	return agg, nil
}

func studentFromDocument(doc dto.StudentDocument) models.Student {
	s := models.Student{
		ID:          string(doc.ID),
		NationalID:  strings.TrimSpace(doc.Cedula),
		FullName:    doc.NombresApellido,
		Address:     deref(doc.Direccion),
		Email:       deref(doc.Correo),
		BirthDate:   dateOnly(deref(doc.FechaNacimiento)),
		MajorName:   firstNonEmpty(deref(doc.CarreraNombre), deref(doc.Carrera)),
		FacultyName: firstNonEmpty(deref(doc.FacultadNombre), deref(doc.Facultad)),
	}
	if doc.CarreraID != nil {
		s.MajorID = *doc.CarreraID
	}
	if doc.FacultadID != nil {
		s.FacultyID = *doc.FacultadID
	}
	return s
}

// enrollmentsFromDocument folds the three sport encodings into one list: nested
// {deporte, cinta_tipo} objects, parallel name/colour arrays, and a single deporte/cinta pair.
func enrollmentsFromDocument(doc dto.AggregateDocument) []models.SportEnrollment {
	enrollments := make([]models.SportEnrollment, 0)
	raw := bytes.TrimSpace(doc.Deportes)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var nested []dto.EnrollmentDocument
		if err := json.Unmarshal(raw, &nested); err == nil {
			for _, e := range nested {
				if e.Deporte == nil || e.Deporte.Nombre == "" {
					continue
				}
				enrollment := models.SportEnrollment{Sport: e.Deporte.Nombre}
				if e.CintaTipo != nil {
					enrollment.Belt = e.CintaTipo.Color
				}
				enrollments = append(enrollments, enrollment)
			}
		} else {
			var names []string
			if err := json.Unmarshal(raw, &names); err == nil {
				for i, name := range names {
					if name == "" {
						continue
					}
					enrollment := models.SportEnrollment{Sport: name}
					if i < len(doc.Cintas) {
						enrollment.Belt = doc.Cintas[i]
					}
					enrollments = append(enrollments, enrollment)
				}
			}
		}
	}

	if doc.Deporte != nil && doc.Deporte.Nombre != "" {
		single := models.SportEnrollment{Sport: doc.Deporte.Nombre}
		if doc.Cinta != nil {
			single.Belt = doc.Cinta.Color
		}
		if !containsSport(enrollments, single.Sport) {
			enrollments = append(enrollments, single)
		}
	}
	return enrollments
}

func containsSport(enrollments []models.SportEnrollment, sport string) bool {
	for _, e := range enrollments {
		if e.Sport == sport {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// dateOnly trims timestamps such as 2000-06-15T00:00:00 to their date part.
func dateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > len(dateLayout) {
		return v[:len(dateLayout)]
	}
	return v
}
