package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athlete-records-api/internal/dto"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

func newGatewayMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

type recordingObserver struct {
	calls []string
	errs  []error
}

func (o *recordingObserver) ObserveGatewayCall(procedure string, _ time.Duration, err error) {
	o.calls = append(o.calls, procedure)
	o.errs = append(o.errs, err)
}

func TestStudentGatewayCreate(t *testing.T) {
	db, mock, cleanup := newGatewayMock(t)
	defer cleanup()
	observer := &recordingObserver{}
	gw := NewStudentGateway(db, observer)

	belt := "Azul"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT create_full_student(")).
		WithArgs("0601", "Ana", nil, "", "", nil, nil, "Judo", "Azul",
			`{"tipo_sangre":"O+"}`, `[{"categoria":"velocidad","prueba":"100m","unidad":"s","resultado":"12"}]`, `[]`).
		WillReturnRows(sqlmock.NewRows([]string{"create_full_student"}).AddRow("2b1d6e0c-5c7b-4a0e-8f43-1d2a7f0e9b10"))

	id, err := gw.CreateFullStudent(context.Background(), dto.CreateStudentParams{
		NationalID:         "0601",
		FullName:           "Ana",
		Sport:              "Judo",
		Belt:               &belt,
		Medical:            dto.MedicalPayload{BloodType: "O+"},
		PhysicalTests:      []dto.PhysicalTestPayload{{Category: "velocidad", Name: "100m", Unit: "s", Result: "12"}},
		CompetitionRecords: []dto.CompetitionRecordPayload{},
	})
	require.NoError(t, err)
	assert.Equal(t, "2b1d6e0c-5c7b-4a0e-8f43-1d2a7f0e9b10", id)
	assert.Equal(t, []string{ProcCreateFullStudent}, observer.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentGatewayCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newGatewayMock(t)
	defer cleanup()
	gw := NewStudentGateway(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT create_full_student(")).
		WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "estudiantes_cedula_key"`, Constraint: "estudiantes_cedula_key"})

	_, err := gw.CreateFullStudent(context.Background(), dto.CreateStudentParams{NationalID: "0601", Sport: "Judo"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrGateway.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "estudiantes_cedula_key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentGatewayUpdateSendsDeleteArrays(t *testing.T) {
	db, mock, cleanup := newGatewayMock(t)
	defer cleanup()
	gw := NewStudentGateway(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("SELECT update_full_student(")).
		WithArgs("0b8f3c2a-1111-4c1e-9a59-6a4f7d2e9c01", "Ana", nil, "", "", nil, "Judo", nil, `{}`,
			`[]`, `[]`, "{6}", `[]`, `[]`, "{}").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := gw.UpdateFullStudent(context.Background(), dto.UpdateStudentParams{
		StudentID:       "0b8f3c2a-1111-4c1e-9a59-6a4f7d2e9c01",
		FullName:        "Ana",
		Sport:           "Judo",
		TestsToAdd:      []dto.PhysicalTestPayload{},
		TestsToUpdate:   []dto.PhysicalTestPayload{},
		TestsToDelete:   []int64{6},
		RecordsToAdd:    []dto.CompetitionRecordPayload{},
		RecordsToUpdate: []dto.CompetitionRecordPayload{},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentGatewayDelete(t *testing.T) {
	db, mock, cleanup := newGatewayMock(t)
	defer cleanup()
	gw := NewStudentGateway(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("SELECT delete_student(p_student_id => $1::uuid)")).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, gw.DeleteStudent(context.Background(), "id-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentGatewayDetails(t *testing.T) {
	db, mock, cleanup := newGatewayMock(t)
	defer cleanup()
	gw := NewStudentGateway(db, nil)

	query := regexp.QuoteMeta("SELECT get_student_full_details(p_cedula => $1)::text")
	mock.ExpectQuery(query).WithArgs("0601").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow([]byte(`{"estudiante":{"cedula":"0601"}}`)))
	mock.ExpectQuery(query).WithArgs("0000").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(nil))

	raw, err := gw.GetStudentFullDetails(context.Background(), "0601")
	require.NoError(t, err)
	assert.JSONEq(t, `{"estudiante":{"cedula":"0601"}}`, string(raw))

	raw, err = gw.GetStudentFullDetails(context.Background(), "0000")
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentGatewayDetailsTransportError(t *testing.T) {
	db, mock, cleanup := newGatewayMock(t)
	defer cleanup()
	observer := &recordingObserver{}
	gw := NewStudentGateway(db, observer)

	mock.ExpectQuery("get_student_full_details").WillReturnError(errors.New("connection refused"))

	_, err := gw.GetStudentFullDetails(context.Background(), "0601")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	require.Len(t, observer.errs, 1)
	assert.Error(t, observer.errs[0])
}
