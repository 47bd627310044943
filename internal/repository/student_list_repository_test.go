package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentListRepositoryList(t *testing.T) {
	db, mock, cleanup := newGatewayMock(t)
	defer cleanup()
	repo := NewStudentListRepository(db, nil)

	rows := sqlmock.NewRows([]string{"id", "cedula", "nombres_apellidos", "edad", "carrera", "deportes", "cintas"}).
		AddRow("a1", "0601", "Ana Pérez", 23, "Física", []byte("{Judo,Wushu}"), []byte("{Azul,NULL}")).
		AddRow("b2", "0602", "Luis Gómez", nil, nil, []byte("{}"), nil)
	mock.ExpectQuery("FROM vista_lista_estudiantes_completa ORDER BY nombres_apellidos").WillReturnRows(rows)

	items, err := repo.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "0601", items[0].NationalID)
	require.NotNil(t, items[0].Age)
	assert.Equal(t, 23, *items[0].Age)
	assert.Equal(t, []string{"Judo", "Wushu"}, items[0].Sports)
	assert.Equal(t, []string{"Azul"}, items[0].Belts)

	assert.Nil(t, items[1].Age)
	assert.Empty(t, items[1].Major)
	assert.Equal(t, []string{}, items[1].Sports)
	assert.Equal(t, []string{}, items[1].Belts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
