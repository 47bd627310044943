package form

import (
	"fmt"
	"slices"

	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

// PhysicalTestRow is a physical test as exchanged with clients; ID is nil for new rows.
type PhysicalTestRow struct {
	ID *int64 `json:"id,omitempty"`
	PhysicalTest
}

// CompetitionRecordRow is a competition record as exchanged with clients; ID is nil for new rows.
type CompetitionRecordRow struct {
	ID *int64 `json:"id,omitempty"`
	CompetitionRecord
}

// WorkingCopy is the whole editable state of a form as a client holds it.
type WorkingCopy struct {
	Student            StudentFields          `json:"student"`
	Medical            MedicalFields          `json:"medical"`
	Sport              string                 `json:"sport"`
	Belt               string                 `json:"belt"`
	PhysicalTests      []PhysicalTestRow      `json:"physical_tests"`
	CompetitionRecords []CompetitionRecordRow `json:"competition_records"`
}

// ApplyWorkingCopy replaces the working state with a client-held copy. Rows carrying an id
// must belong to the baseline; the pending deletions become exactly the baseline rows
// missing from the copy.
// The national ID of an edited student is kept as loaded. On error the form is unchanged.
func (f *Form) ApplyWorkingCopy(w WorkingCopy) error {
	tests, testDeletes, err := reconcileRows(f.baselineTests, w.PhysicalTests, "physical test",
		func(r PhysicalTestRow) (*int64, PhysicalTest) { return r.ID, r.PhysicalTest })
	if err != nil {
		return err
	}
	records, recordDeletes, err := reconcileRows(f.baselineRecords, w.CompetitionRecords, "competition record",
		func(r CompetitionRecordRow) (*int64, CompetitionRecord) { return r.ID, r.CompetitionRecord })
	if err != nil {
		return err
	}

	student := w.Student
	if f.mode == ModeEdit {
		student.NationalID = f.student.NationalID
	}
	if !f.offersMajor(student.FacultyID, student.MajorID) {
		return majorNotOffered(student.MajorID)
	}

	f.student = student
	f.medical = w.Medical
	f.sport = w.Sport
	f.belt = w.Belt
	f.tests = tests
	f.records = records
	f.testsToDelete = testDeletes
	f.recordsToDelete = recordDeletes
	return nil
}

func reconcileRows[R any, T comparable](baseline map[int64]T, rows []R, kind string, split func(R) (*int64, T)) ([]Entry[T], []int64, error) {
	entries := make([]Entry[T], 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		id, fields := split(row)
		if id == nil {
			entries = append(entries, New[T]{Fields: fields})
			continue
		}
		if _, ok := baseline[*id]; !ok {
			return nil, nil, appErrors.Validation(fmt.Sprintf("%s %d was not loaded with this form", kind, *id))
		}
		if _, dup := seen[*id]; dup {
			return nil, nil, appErrors.Validation(fmt.Sprintf("%s %d appears more than once", kind, *id))
		}
		seen[*id] = struct{}{}
		entries = append(entries, Existing[T]{ID: *id, Fields: fields})
	}

	deletes := make([]int64, 0)
	for id := range baseline {
		if _, kept := seen[id]; !kept {
			deletes = append(deletes, id)
		}
	}
	slices.Sort(deletes)
	return entries, deletes, nil
}
