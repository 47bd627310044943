package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AggregateEnvelope is the {data, error} wrapper some versions of
// get_student_full_details return around the aggregate.
type AggregateEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error"`
}

// GatewayErrorBody is an error object embedded in a gateway payload.
type GatewayErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// AggregateDocument covers both the nested shape ({estudiante, deportes[...], ...}) and the
// older flat shape where student fields sit at the top level.
type AggregateDocument struct {
	StudentDocument

	Estudiante        *StudentDocument            `json:"estudiante"`
	Deportes          json.RawMessage             `json:"deportes"`
	Deporte           *SportDocument              `json:"deporte"`
	Cinta             *BeltDocument               `json:"cinta"`
	Cintas            []string                    `json:"cintas"`
	FichaMedica       *MedicalDocument            `json:"ficha_medica"`
	TestsFisicos      []PhysicalTestDocument      `json:"tests_fisicos"`
	RecordsDeportivos []CompetitionRecordDocument `json:"records_deportivos"`
}

// StudentDocument holds student columns as the data service names them.
type StudentDocument struct {
	ID              FlexString `json:"id"`
	Cedula          string     `json:"cedula"`
	NombresApellido string     `json:"nombres_apellidos"`
	Direccion       *string    `json:"direccion"`
	Correo          *string    `json:"correo"`
	FechaNacimiento *string    `json:"fecha_nacimiento"`
	CarreraID       *int64     `json:"carrera_id"`
	Carrera         *string    `json:"carrera"`
	CarreraNombre   *string    `json:"carrera_nombre"`
	FacultadID      *int64     `json:"facultad_id"`
	Facultad        *string    `json:"facultad"`
	FacultadNombre  *string    `json:"facultad_nombre"`
}

// EnrollmentDocument is one element of the nested deportes array.
type EnrollmentDocument struct {
	Deporte   *SportDocument `json:"deporte"`
	CintaTipo *BeltDocument  `json:"cinta_tipo"`
}

// SportDocument names a sport.
type SportDocument struct {
	Nombre string `json:"nombre"`
}

// BeltDocument names a belt colour.
type BeltDocument struct {
	Color string `json:"color"`
}

// MedicalDocument is the ficha_medica object.
type MedicalDocument struct {
	TipoSangre           *string `json:"tipo_sangre"`
	Patologias           *string `json:"patologias"`
	UltimaConsultaMedica *string `json:"ultima_consulta_medica"`
}

// PhysicalTestDocument is one tests_fisicos element.
type PhysicalTestDocument struct {
	ID          FlexInt    `json:"id"`
	Categoria   string     `json:"categoria"`
	Prueba      string     `json:"prueba"`
	Unidad      *string    `json:"unidad"`
	Resultado   FlexString `json:"resultado"`
	FechaPrueba *string    `json:"fecha_prueba"`
	CreatedAt   *string    `json:"created_at"`
}

// CompetitionRecordDocument is one records_deportivos element.
type CompetitionRecordDocument struct {
	ID                FlexInt `json:"id"`
	NombreCompetencia string  `json:"nombre_competencia"`
	FechaCompetencia  *string `json:"fecha_competencia"`
	Resultado         *string `json:"resultado"`
	Puesto            *int    `json:"puesto"`
}

// StudentListRow is one row of vista_lista_estudiantes_completa as served over REST.
type StudentListRow struct {
	ID              string   `json:"id"`
	Cedula          string   `json:"cedula"`
	NombresApellido string   `json:"nombres_apellidos"`
	Edad            *int     `json:"edad"`
	Carrera         *string  `json:"carrera"`
	Deportes        []string `json:"deportes"`
	Cintas          []string `json:"cintas"`
}

// FlexString decodes a JSON string or number into a string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number: %w", err)
		}
		*f = FlexString(n.String())
	}
	return nil
}

// FlexInt decodes a JSON number or numeric string into an int64.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("id %q is not an integer", raw)
	}
	*f = FlexInt(v)
	return nil
}
