package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athlete-records-api/internal/dto"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
	"github.com/noah-isme/athlete-records-api/pkg/postgrest"
)

func newRESTGateway(t *testing.T, handler http.HandlerFunc) (*RESTGateway, *recordingObserver) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	observer := &recordingObserver{}
	return NewRESTGateway(postgrest.NewClient(postgrest.Config{URL: srv.URL, APIKey: "anon"}, srv.Client()), observer), observer
}

func TestRESTGatewayCatalogs(t *testing.T) {
	gw, observer := newRESTGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/deportes":
			_, _ = w.Write([]byte(`[{"nombre":"Judo"},{"nombre":"Wushu"}]`))
		case "/cinta_tipos":
			assert.Equal(t, "id.asc", r.URL.Query().Get("order"))
			_, _ = w.Write([]byte(`[{"color":"Blanco"}]`))
		case "/rpc/get_facultades":
			_, _ = w.Write([]byte(`[{"id":1,"nombre":"Ciencias"}]`))
		case "/rpc/get_carreras_con_facultad":
			_, _ = w.Write([]byte(`[{"id":10,"nombre":"Física","facultad_id":1,"facultad_nombre":"Ciencias"}]`))
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	sports, err := gw.ListSports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Judo", "Wushu"}, sports)

	belts, err := gw.ListBelts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blanco"}, belts)

	faculties, err := gw.ListFaculties(ctx)
	require.NoError(t, err)
	require.Len(t, faculties, 1)
	assert.Equal(t, "Ciencias", faculties[0].Name)

	majors, err := gw.ListMajors(ctx)
	require.NoError(t, err)
	require.Len(t, majors, 1)
	assert.Equal(t, int64(1), majors[0].FacultyID)

	assert.Len(t, observer.calls, 4)
}

func TestRESTGatewayCreateAndDuplicate(t *testing.T) {
	calls := 0
	gw, _ := newRESTGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rpc/create_full_student", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		var body map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.JSONEq(t, `"0601"`, string(body["p_cedula"]))
		assert.JSONEq(t, `null`, string(body["p_cinta_color"]))

		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(`"2b1d6e0c-5c7b-4a0e-8f43-1d2a7f0e9b10"`))
			return
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"estudiantes_cedula_key\""}`))
	})

	params := dto.CreateStudentParams{NationalID: "0601", Sport: "Judo"}
	id, err := gw.CreateFullStudent(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "2b1d6e0c-5c7b-4a0e-8f43-1d2a7f0e9b10", id)

	_, err = gw.CreateFullStudent(context.Background(), params)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "estudiantes_cedula_key")
}

func TestRESTGatewayUpdateSendsEmptyDeleteGroups(t *testing.T) {
	gw, _ := newRESTGateway(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.JSONEq(t, `[]`, string(body["p_tests_fisicos_a_eliminar"]))
		assert.JSONEq(t, `[9]`, string(body["p_records_a_eliminar"]))
		w.WriteHeader(http.StatusNoContent)
	})

	err := gw.UpdateFullStudent(context.Background(), dto.UpdateStudentParams{StudentID: "id", RecordsToDelete: []int64{9}})
	require.NoError(t, err)
}

func TestRESTGatewayDetailsAndList(t *testing.T) {
	gw, _ := newRESTGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rpc/get_student_full_details":
			_, _ = w.Write([]byte(`{"data":null,"error":{"message":"Estudiante no encontrado"}}`))
		case "/vista_lista_estudiantes_completa":
			_, _ = w.Write([]byte(`[{"id":"a1","cedula":"0601","nombres_apellidos":"Ana","edad":23,"carrera":null,"deportes":["Judo",null],"cintas":null}]`))
		}
	})

	raw, err := gw.GetStudentFullDetails(context.Background(), "0601")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "no encontrado")

	items, err := gw.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"Judo"}, items[0].Sports)
	assert.Equal(t, []string{}, items[0].Belts)
	require.NotNil(t, items[0].Age)
	assert.Equal(t, 23, *items[0].Age)
}
