package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/athlete-records-api/internal/dto"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

// NationalIDConstraint is the unique constraint whose violation means the national ID is taken.
const NationalIDConstraint = "estudiantes_cedula_key"

// Gateway is the subset of the data service a form submits to.
type Gateway interface {
	CreateFullStudent(ctx context.Context, params dto.CreateStudentParams) (string, error)
	UpdateFullStudent(ctx context.Context, params dto.UpdateStudentParams) error
}

// Submission is the payload prepared by BeginSubmit. Exactly one of Create and Update is set.
type Submission struct {
	Mode       Mode
	NationalID string
	Create     *dto.CreateStudentParams
	Update     *dto.UpdateStudentParams
}

var validate = validator.New()

type submissionRules struct {
	Email     string        `validate:"omitempty,email"`
	BirthDate string        `validate:"omitempty,datetime=2006-01-02"`
	BloodType string        `validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Checkup   string        `validate:"omitempty,datetime=2006-01-02"`
	Tests     []testRules   `validate:"dive"`
	Records   []recordRules `validate:"dive"`
}

type testRules struct {
	Category string `validate:"oneof=velocidad fuerza resistencia"`
}

type recordRules struct {
	Date   string `validate:"omitempty,datetime=2006-01-02"`
	Result string `validate:"omitempty,oneof=ORO PLATA BRONCE OTRO"`
}

// Validate checks the submit preconditions without touching the form.
func (f *Form) Validate() error {
	if f.mode == ModeCreate && strings.TrimSpace(f.student.NationalID) == "" {
		return appErrors.Validation("national ID is required for a new record")
	}
	if strings.TrimSpace(f.sport) == "" {
		return appErrors.Validation("a sport must be selected")
	}

	rules := submissionRules{
		Email:     strings.TrimSpace(f.student.Email),
		BirthDate: strings.TrimSpace(f.student.BirthDate),
		BloodType: strings.TrimSpace(f.medical.BloodType),
		Checkup:   strings.TrimSpace(f.medical.LastCheckup),
	}
	for _, t := range f.tests {
		rules.Tests = append(rules.Tests, testRules{Category: string(t.Value().Category)})
	}
	for _, r := range f.records {
		v := r.Value()
		rules.Records = append(rules.Records, recordRules{Date: strings.TrimSpace(v.Date), Result: string(v.Result)})
	}
	if err := validate.Struct(rules); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, describeValidation(err))
	}
	return nil
}

// BeginSubmit validates the form, builds the gateway payload and moves to PhaseSubmitting.
// A validation failure leaves the form Ready and untouched.
func (f *Form) BeginSubmit() (*Submission, error) {
	switch f.phase {
	case PhaseSubmitting:
		return nil, appErrors.Clone(appErrors.ErrConflict, "form submission already in progress")
	case PhaseSucceeded:
		return nil, appErrors.Clone(appErrors.ErrConflict, "form was already submitted")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	sub := &Submission{Mode: f.mode, NationalID: strings.TrimSpace(f.student.NationalID)}
	if f.mode == ModeCreate {
		params := f.createParams()
		sub.Create = &params
	} else {
		params := f.updateParams()
		sub.Update = &params
	}
	f.phase = PhaseSubmitting
	f.lastErr = nil
	return sub, nil
}

// CompleteSubmit records the gateway outcome. On failure the form returns to Ready with
// its data intact and the translated error is returned.
func (f *Form) CompleteSubmit(gatewayErr error) error {
	if gatewayErr == nil {
		f.phase = PhaseSucceeded
		f.lastErr = nil
		return nil
	}
	f.phase = PhaseReady
	f.lastErr = TranslateGatewayError(gatewayErr)
	return f.lastErr
}

// Submit runs a full submit against the gateway and returns the national ID to navigate to.
func (f *Form) Submit(ctx context.Context, gw Gateway) (string, error) {
	sub, err := f.BeginSubmit()
	if err != nil {
		return "", err
	}
	return sub.NationalID, f.CompleteSubmit(sub.Send(ctx, gw))
}

// Send performs the gateway call for the prepared submission.
func (s *Submission) Send(ctx context.Context, gw Gateway) error {
	if s.Create != nil {
		_, err := gw.CreateFullStudent(ctx, *s.Create)
		return err
	}
	return gw.UpdateFullStudent(ctx, *s.Update)
}

// TranslateGatewayError maps a data service failure to the error shown to the user.
// A duplicate national ID gets its own message; anything else keeps the service's text.
func TranslateGatewayError(err error) error {
	if err == nil {
		return nil
	}
	if IsDuplicateNationalID(err) {
		return appErrors.Wrap(err, appErrors.ErrDuplicateNationalID.Code, appErrors.ErrDuplicateNationalID.Status, appErrors.ErrDuplicateNationalID.Message)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, err.Error())
}

// IsDuplicateNationalID reports whether err is the national ID unique constraint violation.
func IsDuplicateNationalID(err error) bool {
	return err != nil && strings.Contains(err.Error(), NationalIDConstraint)
}

func (f *Form) createParams() dto.CreateStudentParams {
	tests := make([]dto.PhysicalTestPayload, 0, len(f.tests))
	for _, t := range f.tests {
		tests = append(tests, testPayload(nil, t.Value()))
	}
	records := make([]dto.CompetitionRecordPayload, 0, len(f.records))
	for _, r := range f.records {
		records = append(records, recordPayload(nil, r.Value()))
	}
	return dto.CreateStudentParams{
		NationalID:         strings.TrimSpace(f.student.NationalID),
		FullName:           f.student.FullName,
		BirthDate:          optionalText(f.student.BirthDate),
		Address:            f.student.Address,
		Email:              f.student.Email,
		MajorID:            optionalID(f.student.MajorID),
		FacultyID:          optionalID(f.student.FacultyID),
		Sport:              f.sport,
		Belt:               optionalText(f.belt),
		Medical:            f.medicalPayload(),
		PhysicalTests:      tests,
		CompetitionRecords: records,
	}
}

func (f *Form) updateParams() dto.UpdateStudentParams {
	addedTests, changedTests := partition(f.tests, f.baselineTests)
	addedRecords, changedRecords := partition(f.records, f.baselineRecords)

	params := dto.UpdateStudentParams{
		StudentID:       f.studentID,
		FullName:        f.student.FullName,
		BirthDate:       optionalText(f.student.BirthDate),
		Address:         f.student.Address,
		Email:           f.student.Email,
		MajorID:         optionalID(f.student.MajorID),
		Sport:           f.sport,
		Belt:            optionalText(f.belt),
		Medical:         f.medicalPayload(),
		TestsToAdd:      make([]dto.PhysicalTestPayload, 0, len(addedTests)),
		TestsToUpdate:   make([]dto.PhysicalTestPayload, 0, len(changedTests)),
		TestsToDelete:   loadedOnly(f.testsToDelete, f.baselineTests),
		RecordsToAdd:    make([]dto.CompetitionRecordPayload, 0, len(addedRecords)),
		RecordsToUpdate: make([]dto.CompetitionRecordPayload, 0, len(changedRecords)),
		RecordsToDelete: loadedOnly(f.recordsToDelete, f.baselineRecords),
	}
	for _, t := range addedTests {
		params.TestsToAdd = append(params.TestsToAdd, testPayload(nil, t))
	}
	for _, t := range changedTests {
		id := t.ID
		params.TestsToUpdate = append(params.TestsToUpdate, testPayload(&id, t.Fields))
	}
	for _, r := range addedRecords {
		params.RecordsToAdd = append(params.RecordsToAdd, recordPayload(nil, r))
	}
	for _, r := range changedRecords {
		id := r.ID
		params.RecordsToUpdate = append(params.RecordsToUpdate, recordPayload(&id, r.Fields))
	}
	return params
}

func (f *Form) medicalPayload() dto.MedicalPayload {
	return dto.MedicalPayload{
		BloodType:   strings.TrimSpace(f.medical.BloodType),
		Pathologies: strings.TrimSpace(f.medical.Pathologies),
		LastCheckup: strings.TrimSpace(f.medical.LastCheckup),
	}
}

func testPayload(id *int64, t PhysicalTest) dto.PhysicalTestPayload {
	return dto.PhysicalTestPayload{ID: id, Category: string(t.Category), Name: t.Name, Unit: t.Unit, Result: t.Result}
}

func recordPayload(id *int64, r CompetitionRecord) dto.CompetitionRecordPayload {
	return dto.CompetitionRecordPayload{
		ID:        id,
		Name:      r.Name,
		Date:      r.Date,
		Result:    string(r.Result),
		Placement: r.Placement.Ptr(),
	}
}

// loadedOnly keeps ids present in the baseline; nothing the form never loaded is deleted.
func loadedOnly[T comparable](ids []int64, baseline map[int64]T) []int64 {
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := baseline[id]; ok {
			result = append(result, id)
		}
	}
	return result
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func optionalText(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid form data"
	}
	names := map[string]string{
		"Email":     "email is not a valid address",
		"BirthDate": "birth date must use YYYY-MM-DD",
		"BloodType": "blood type is not recognised",
		"Checkup":   "last checkup date must use YYYY-MM-DD",
		"Category":  "physical test category is not recognised",
		"Date":      "competition date must use YYYY-MM-DD",
		"Result":    "competition result is not recognised",
	}
	first := fieldErrs[0]
	if msg, ok := names[first.Field()]; ok {
		return msg
	}
	return fmt.Sprintf("invalid value for %s", first.Field())
}
