package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
	"github.com/noah-isme/athlete-records-api/pkg/postgrest"
)

// Procedure and table names exposed by the data service.
const (
	ProcCreateFullStudent     = "create_full_student"
	ProcUpdateFullStudent     = "update_full_student"
	ProcDeleteStudent         = "delete_student"
	ProcGetStudentFullDetails = "get_student_full_details"
	ProcGetFaculties          = "get_facultades"
	ProcGetMajors             = "get_carreras_con_facultad"

	TableSports      = "deportes"
	TableBelts       = "cinta_tipos"
	ViewStudentsList = "vista_lista_estudiantes_completa"
)

// CallObserver receives the timing of every data service call.
type CallObserver interface {
	ObserveGatewayCall(procedure string, duration time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveGatewayCall(string, time.Duration, error) {}

func observerOrNoop(o CallObserver) CallObserver {
	if o == nil {
		return noopObserver{}
	}
	return o
}

func observe(o CallObserver, procedure string, start time.Time, err error) {
	o.ObserveGatewayCall(procedure, time.Since(start), err)
}

// gatewayFailure keeps the data service's own message as the user-facing text. Transport
// failures keep their plain wrapped form.
func gatewayFailure(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return appErrors.Wrap(wrapped, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, pqErr.Message)
	}
	var restErr *postgrest.Error
	if errors.As(err, &restErr) {
		return appErrors.Wrap(wrapped, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, restErr.Message)
	}
	return wrapped
}
