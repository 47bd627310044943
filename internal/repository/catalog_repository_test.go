package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athlete-records-api/internal/models"
)

func TestCatalogRepositoryLists(t *testing.T) {
	db, mock, cleanup := newGatewayMock(t)
	defer cleanup()
	observer := &recordingObserver{}
	repo := NewCatalogRepository(db, observer)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT nombre FROM deportes ORDER BY nombre")).
		WillReturnRows(sqlmock.NewRows([]string{"nombre"}).AddRow("Judo").AddRow("Karate Do"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT color FROM cinta_tipos ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"color"}).AddRow("Blanco").AddRow("Azul"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nombre FROM get_facultades()")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre"}).AddRow(1, "Ciencias"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nombre, facultad_id, facultad_nombre FROM get_carreras_con_facultad()")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "facultad_id", "facultad_nombre"}).AddRow(10, "Física", 1, "Ciencias"))

	ctx := context.Background()
	sports, err := repo.ListSports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Judo", "Karate Do"}, sports)

	belts, err := repo.ListBelts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blanco", "Azul"}, belts)

	faculties, err := repo.ListFaculties(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Faculty{{ID: 1, Name: "Ciencias"}}, faculties)

	majors, err := repo.ListMajors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Major{{ID: 10, Name: "Física", FacultyID: 1, FacultyName: "Ciencias"}}, majors)

	assert.Equal(t, []string{TableSports, TableBelts, ProcGetFaculties, ProcGetMajors}, observer.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryError(t *testing.T) {
	db, mock, cleanup := newGatewayMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db, nil)

	mock.ExpectQuery("FROM deportes").WillReturnError(errors.New("relation does not exist"))

	_, err := repo.ListSports(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list sports")
}
