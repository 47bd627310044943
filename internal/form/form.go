// Package form holds the state of the student registration/edit form: personal data,
// medical record, sport selection and the two editable child collections. In edit mode it
// keeps the rows loaded from the data service as an immutable baseline next to the working
// copy, and reconciles both into add/update/delete groups on submit.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/athlete-records-api/internal/models"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

// Mode tells whether the form registers a new student or edits a loaded one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Phase is the position of a form page in its lifecycle.
type Phase string

const (
	PhaseLoadingCatalogs Phase = "loading_catalogs"
	PhaseLoadingStudent  Phase = "loading_student"
	PhaseReady           Phase = "ready"
	PhaseSubmitting      Phase = "submitting"
	PhaseSucceeded       Phase = "succeeded"
)

// Section groups form fields for UpdateField.
type Section string

const (
	SectionStudent   Section = "student"
	SectionMedical   Section = "medical"
	SectionSelection Section = "selection"
)

// StudentFields are the personal data inputs. Zero ids mean "nothing selected".
type StudentFields struct {
	NationalID string `json:"national_id"`
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	Email      string `json:"email"`
	BirthDate  string `json:"birth_date"`
	FacultyID  int64  `json:"faculty_id"`
	MajorID    int64  `json:"major_id"`
}

// MedicalFields are the medical record inputs; blank means "let the data service decide".
type MedicalFields struct {
	BloodType   string `json:"blood_type"`
	Pathologies string `json:"pathologies"`
	LastCheckup string `json:"last_checkup"`
}

// PhysicalTest holds the editable fields of a physical test row.
type PhysicalTest struct {
	Category models.TestCategory `json:"category"`
	Name     string              `json:"name"`
	Unit     string              `json:"unit"`
	Result   string              `json:"result"`
}

// CompetitionRecord holds the editable fields of a competition record row.
type CompetitionRecord struct {
	Name      string                   `json:"name"`
	Date      string                   `json:"date"`
	Result    models.CompetitionResult `json:"result"`
	Placement models.Placement         `json:"placement"`
}

// Form is the composite state of one form page. It is not safe for concurrent use.
type Form struct {
	mode      Mode
	phase     Phase
	studentID string
	catalogs  models.Catalogs

	student StudentFields
	medical MedicalFields
	sport   string
	belt    string

	tests   []Entry[PhysicalTest]
	records []Entry[CompetitionRecord]

	baselineTests   map[int64]PhysicalTest
	baselineRecords map[int64]CompetitionRecord
	testsToDelete   []int64
	recordsToDelete []int64

	lastErr error
}

// NewCreate returns an empty registration form.
func NewCreate(catalogs models.Catalogs) *Form {
	return &Form{
		mode:            ModeCreate,
		phase:           PhaseReady,
		catalogs:        catalogs,
		tests:           make([]Entry[PhysicalTest], 0),
		records:         make([]Entry[CompetitionRecord], 0),
		baselineTests:   map[int64]PhysicalTest{},
		baselineRecords: map[int64]CompetitionRecord{},
	}
}

// NewEdit returns a form populated from a loaded aggregate. The loaded child rows become
// the baseline the submit diff is computed against.
func NewEdit(catalogs models.Catalogs, agg *models.Aggregate) *Form {
	f := NewCreate(catalogs)
	f.mode = ModeEdit
	f.studentID = agg.Student.ID

	s := agg.Student
	f.student = StudentFields{
		NationalID: s.NationalID,
		FullName:   s.FullName,
		Address:    s.Address,
		Email:      s.Email,
		BirthDate:  s.BirthDate,
		FacultyID:  s.FacultyID,
		MajorID:    s.MajorID,
	}
	if f.student.FacultyID == 0 && f.student.MajorID != 0 {
		if major, ok := models.FindMajor(catalogs.Majors, f.student.MajorID); ok {
			f.student.FacultyID = major.FacultyID
		}
	}

	if len(agg.Sports) > 0 {
		f.sport = agg.Sports[0].Sport
		f.belt = agg.Sports[0].Belt
	}
	if agg.Medical != nil {
		f.medical = MedicalFields{
			BloodType:   string(agg.Medical.BloodType),
			Pathologies: agg.Medical.Pathologies,
			LastCheckup: agg.Medical.LastCheckup,
		}
	}

	for _, t := range agg.PhysicalTests {
		fields := PhysicalTest{Category: t.Category, Name: t.Name, Unit: t.Unit, Result: t.Result}
		if t.ID == 0 {
			f.tests = append(f.tests, New[PhysicalTest]{Fields: fields})
			continue
		}
		f.tests = append(f.tests, Existing[PhysicalTest]{ID: t.ID, Fields: fields})
		f.baselineTests[t.ID] = fields
	}
	for _, r := range agg.CompetitionRecords {
		fields := CompetitionRecord{Name: r.Name, Date: r.Date, Result: r.Result, Placement: r.Placement}
		if r.ID == 0 {
			f.records = append(f.records, New[CompetitionRecord]{Fields: fields})
			continue
		}
		f.records = append(f.records, Existing[CompetitionRecord]{ID: r.ID, Fields: fields})
		f.baselineRecords[r.ID] = fields
	}
	return f
}

// Mode reports whether the form creates or edits.
func (f *Form) Mode() Mode { return f.mode }

// Phase reports the lifecycle phase.
func (f *Form) Phase() Phase { return f.phase }

// StudentID is the internal id of the edited student; empty in create mode.
func (f *Form) StudentID() string { return f.studentID }

// NationalID is the national id the form will navigate to after a successful submit.
func (f *Form) NationalID() string { return f.student.NationalID }

// LastError is the error of the most recent failed submit, if any.
func (f *Form) LastError() error { return f.lastErr }

// Catalogs returns the lookup lists loaded for this page.
func (f *Form) Catalogs() models.Catalogs { return f.catalogs }

// AddPhysicalTest appends a default row and returns its position.
func (f *Form) AddPhysicalTest() int {
	f.tests = append(f.tests, New[PhysicalTest]{Fields: PhysicalTest{Category: models.TestCategories[0]}})
	return len(f.tests) - 1
}

// RemovePhysicalTest drops the row at position i. Removing a loaded row queues its id
// for deletion.
func (f *Form) RemovePhysicalTest(i int) error {
	if i < 0 || i >= len(f.tests) {
		return outOfRange("physical test", i)
	}
	next, id, existing := removeAt(f.tests, i)
	f.tests = next
	if existing {
		f.testsToDelete = appendUnique(f.testsToDelete, id)
	}
	return nil
}

// SetPhysicalTest replaces the fields of the row at position i.
func (f *Form) SetPhysicalTest(i int, fields PhysicalTest) error {
	if i < 0 || i >= len(f.tests) {
		return outOfRange("physical test", i)
	}
	f.tests[i] = withFields(f.tests[i], fields)
	return nil
}

// AddCompetitionRecord appends a default row (result OTRO, no placement) and returns its position.
func (f *Form) AddCompetitionRecord() int {
	f.records = append(f.records, New[CompetitionRecord]{Fields: CompetitionRecord{Result: models.CompetitionResultOther}})
	return len(f.records) - 1
}

// RemoveCompetitionRecord drops the row at position i, queueing loaded ids for deletion.
func (f *Form) RemoveCompetitionRecord(i int) error {
	if i < 0 || i >= len(f.records) {
		return outOfRange("competition record", i)
	}
	next, id, existing := removeAt(f.records, i)
	f.records = next
	if existing {
		f.recordsToDelete = appendUnique(f.recordsToDelete, id)
	}
	return nil
}

// SetCompetitionRecord replaces the fields of the row at position i.
func (f *Form) SetCompetitionRecord(i int, fields CompetitionRecord) error {
	if i < 0 || i >= len(f.records) {
		return outOfRange("competition record", i)
	}
	f.records[i] = withFields(f.records[i], fields)
	return nil
}

// UpdateField sets one field of a section, leaving every other section untouched.
func (f *Form) UpdateField(section Section, field, value string) error {
	switch section {
	case SectionStudent:
		return f.updateStudentField(field, value)
	case SectionMedical:
		switch field {
		case "blood_type":
			f.medical.BloodType = value
		case "pathologies":
			f.medical.Pathologies = value
		case "last_checkup":
			f.medical.LastCheckup = value
		default:
			return unknownField(section, field)
		}
		return nil
	case SectionSelection:
		switch field {
		case "sport":
			f.sport = value
		case "belt":
			f.belt = value
		case "faculty_id", "major_id":
			return f.updateStudentField(field, value)
		default:
			return unknownField(section, field)
		}
		return nil
	default:
		return appErrors.Validation(fmt.Sprintf("unknown form section %q", section))
	}
}

func (f *Form) updateStudentField(field, value string) error {
	switch field {
	case "national_id":
		if f.mode == ModeEdit {
			return appErrors.Validation("national ID cannot be changed on an existing record")
		}
		f.student.NationalID = strings.TrimSpace(value)
	case "full_name":
		f.student.FullName = value
	case "address":
		f.student.Address = value
	case "email":
		f.student.Email = value
	case "birth_date":
		f.student.BirthDate = value
	case "faculty_id":
		id, err := parseID(field, value)
		if err != nil {
			return err
		}
		f.SelectFaculty(id)
	case "major_id":
		id, err := parseID(field, value)
		if err != nil {
			return err
		}
		return f.SelectMajor(id)
	default:
		return unknownField(SectionStudent, field)
	}
	return nil
}

// SelectFaculty changes the faculty; a different faculty clears the selected major.
func (f *Form) SelectFaculty(id int64) {
	if id == f.student.FacultyID {
		return
	}
	f.student.FacultyID = id
	f.student.MajorID = 0
}

// SelectMajor sets the major, which must be one of AvailableMajors when the catalog is loaded.
func (f *Form) SelectMajor(id int64) error {
	if !f.offersMajor(f.student.FacultyID, id) {
		return majorNotOffered(id)
	}
	f.student.MajorID = id
	return nil
}

func (f *Form) offersMajor(facultyID, majorID int64) bool {
	if majorID == 0 || len(f.catalogs.Majors) == 0 {
		return true
	}
	for _, m := range models.MajorsForFaculty(f.catalogs.Majors, facultyID) {
		if m.ID == majorID {
			return true
		}
	}
	return false
}

// AvailableMajors lists the majors of the selected faculty.
func (f *Form) AvailableMajors() []models.Major {
	return models.MajorsForFaculty(f.catalogs.Majors, f.student.FacultyID)
}

// PendingDeletes returns the queued ids of removed loaded rows.
func (f *Form) PendingDeletes() (tests []int64, records []int64) {
	return append([]int64(nil), f.testsToDelete...), append([]int64(nil), f.recordsToDelete...)
}

func majorNotOffered(id int64) error {
	return appErrors.Validation(fmt.Sprintf("major %d is not offered by the selected faculty", id))
}

func outOfRange(kind string, i int) error {
	return appErrors.Validation(fmt.Sprintf("no %s at position %d", kind, i))
}

func unknownField(section Section, field string) error {
	return appErrors.Validation(fmt.Sprintf("unknown field %q in section %q", field, section))
}

func parseID(field, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 0 {
		return 0, appErrors.Validation(fmt.Sprintf("%s must be a positive integer", field))
	}
	return id, nil
}
