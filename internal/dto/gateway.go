package dto

// The types in this file mirror the argument contract of the data service procedures.
// JSON tags are the procedure parameter names so a value can be posted as an RPC body as-is.

// MedicalPayload carries medical record fields. Blank fields are omitted so the data
// service applies its own defaults.
type MedicalPayload struct {
	BloodType   string `json:"tipo_sangre,omitempty"`
	Pathologies string `json:"patologias,omitempty"`
	LastCheckup string `json:"ultima_consulta_medica,omitempty"`
}

// PhysicalTestPayload is one physical test row. ID is set only for updates.
type PhysicalTestPayload struct {
	ID       *int64 `json:"id,omitempty"`
	Category string `json:"categoria"`
	Name     string `json:"prueba"`
	Unit     string `json:"unidad"`
	Result   string `json:"resultado"`
}

// CompetitionRecordPayload is one competition record row. ID is set only for updates.
type CompetitionRecordPayload struct {
	ID        *int64 `json:"id,omitempty"`
	Name      string `json:"nombre_competencia"`
	Date      string `json:"fecha_competencia"`
	Result    string `json:"resultado,omitempty"`
	Placement *int   `json:"puesto,omitempty"`
}

// CreateStudentParams are the arguments of create_full_student.
type CreateStudentParams struct {
	NationalID         string                     `json:"p_cedula"`
	FullName           string                     `json:"p_nombres_apellidos"`
	BirthDate          *string                    `json:"p_fecha_nacimiento"`
	Address            string                     `json:"p_direccion"`
	Email              string                     `json:"p_correo"`
	MajorID            *int64                     `json:"p_carrera_id"`
	FacultyID          *int64                     `json:"p_facultad_id"`
	Sport              string                     `json:"p_deporte_nombre"`
	Belt               *string                    `json:"p_cinta_color"`
	Medical            MedicalPayload             `json:"p_ficha_medica"`
	PhysicalTests      []PhysicalTestPayload      `json:"p_tests_fisicos"`
	CompetitionRecords []CompetitionRecordPayload `json:"p_records_deportivos"`
}

// UpdateStudentParams are the arguments of update_full_student.
type UpdateStudentParams struct {
	StudentID       string                     `json:"p_student_id"`
	FullName        string                     `json:"p_nombres_apellidos"`
	BirthDate       *string                    `json:"p_fecha_nacimiento"`
	Address         string                     `json:"p_direccion"`
	Email           string                     `json:"p_correo"`
	MajorID         *int64                     `json:"p_carrera_id"`
	Sport           string                     `json:"p_deporte_nombre"`
	Belt            *string                    `json:"p_cinta_color"`
	Medical         MedicalPayload             `json:"p_ficha_medica"`
	TestsToAdd      []PhysicalTestPayload      `json:"p_tests_fisicos_a_agregar"`
	TestsToUpdate   []PhysicalTestPayload      `json:"p_tests_fisicos_a_actualizar"`
	TestsToDelete   []int64                    `json:"p_tests_fisicos_a_eliminar"`
	RecordsToAdd    []CompetitionRecordPayload `json:"p_records_a_agregar"`
	RecordsToUpdate []CompetitionRecordPayload `json:"p_records_a_actualizar"`
	RecordsToDelete []int64                    `json:"p_records_a_eliminar"`
}

// DeleteStudentParams are the arguments of delete_student.
type DeleteStudentParams struct {
	StudentID string `json:"p_student_id"`
}

// StudentLookupParams are the arguments of get_student_full_details.
type StudentLookupParams struct {
	NationalID string `json:"p_cedula"`
}
