package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/athlete-records-api/internal/dto"
)

// StudentGateway calls the student procedures directly on PostgreSQL.
type StudentGateway struct {
	db       *sqlx.DB
	observer CallObserver
}

// NewStudentGateway constructs a StudentGateway.
func NewStudentGateway(db *sqlx.DB, observer CallObserver) *StudentGateway {
	return &StudentGateway{db: db, observer: observerOrNoop(observer)}
}

const createFullStudentQuery = `SELECT create_full_student(
    p_cedula => $1, p_nombres_apellidos => $2, p_fecha_nacimiento => $3::date, p_direccion => $4,
    p_correo => $5, p_carrera_id => $6, p_facultad_id => $7, p_deporte_nombre => $8, p_cinta_color => $9,
    p_ficha_medica => $10::jsonb, p_tests_fisicos => $11::jsonb, p_records_deportivos => $12::jsonb)`

const updateFullStudentQuery = `SELECT update_full_student(
    p_student_id => $1::uuid, p_nombres_apellidos => $2, p_fecha_nacimiento => $3::date, p_direccion => $4,
    p_correo => $5, p_carrera_id => $6, p_deporte_nombre => $7, p_cinta_color => $8, p_ficha_medica => $9::jsonb,
    p_tests_fisicos_a_agregar => $10::jsonb, p_tests_fisicos_a_actualizar => $11::jsonb, p_tests_fisicos_a_eliminar => $12::int[],
    p_records_a_agregar => $13::jsonb, p_records_a_actualizar => $14::jsonb, p_records_a_eliminar => $15::int[])`

// CreateFullStudent registers a student with every child record and returns the new internal id.
func (g *StudentGateway) CreateFullStudent(ctx context.Context, params dto.CreateStudentParams) (id string, err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcCreateFullStudent, start, err) }()

	docs, err := jsonArgs(params.Medical, params.PhysicalTests, params.CompetitionRecords)
	if err != nil {
		return "", fmt.Errorf("encode create student arguments: %w", err)
	}

	var newID sql.NullString
	err = g.db.QueryRowxContext(ctx, createFullStudentQuery,
		params.NationalID, params.FullName, params.BirthDate, params.Address, params.Email,
		params.MajorID, params.FacultyID, params.Sport, params.Belt,
		docs[0], docs[1], docs[2],
	).Scan(&newID)
	if err != nil {
		return "", gatewayFailure("create full student", err)
	}
	return newID.String, nil
}

// UpdateFullStudent applies an edit with explicit add/update/delete groups for child rows.
func (g *StudentGateway) UpdateFullStudent(ctx context.Context, params dto.UpdateStudentParams) (err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcUpdateFullStudent, start, err) }()

	docs, err := jsonArgs(params.Medical, params.TestsToAdd, params.TestsToUpdate, params.RecordsToAdd, params.RecordsToUpdate)
	if err != nil {
		return fmt.Errorf("encode update student arguments: %w", err)
	}

	_, err = g.db.ExecContext(ctx, updateFullStudentQuery,
		params.StudentID, params.FullName, params.BirthDate, params.Address, params.Email,
		params.MajorID, params.Sport, params.Belt, docs[0],
		docs[1], docs[2], pq.Array(nonNilIDs(params.TestsToDelete)),
		docs[3], docs[4], pq.Array(nonNilIDs(params.RecordsToDelete)),
	)
	if err != nil {
		return gatewayFailure("update full student", err)
	}
	return nil
}

// DeleteStudent removes a student; the data service cascades to child rows.
func (g *StudentGateway) DeleteStudent(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcDeleteStudent, start, err) }()

	if _, err = g.db.ExecContext(ctx, `SELECT delete_student(p_student_id => $1::uuid)`, id); err != nil {
		return gatewayFailure("delete student", err)
	}
	return nil
}

// GetStudentFullDetails returns the raw aggregate document for a national ID. A SQL NULL
// result yields a nil message.
func (g *StudentGateway) GetStudentFullDetails(ctx context.Context, nationalID string) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() { observe(g.observer, ProcGetStudentFullDetails, start, err) }()

	var payload []byte
	err = g.db.QueryRowxContext(ctx, `SELECT get_student_full_details(p_cedula => $1)::text`, nationalID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, gatewayFailure("get student full details", err)
	}
	if payload == nil {
		return nil, nil
	}
	return json.RawMessage(payload), nil
}

func jsonArgs(values ...interface{}) ([]string, error) {
	docs := make([]string, 0, len(values))
	for _, v := range values {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		docs = append(docs, string(encoded))
	}
	return docs, nil
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
