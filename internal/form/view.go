package form

import (
	"github.com/noah-isme/athlete-records-api/internal/models"
)

// View is a read-only snapshot of a form for rendering.
type View struct {
	Mode               Mode                   `json:"mode"`
	Phase              Phase                  `json:"phase"`
	StudentID          string                 `json:"student_id,omitempty"`
	Student            StudentFields          `json:"student"`
	Medical            MedicalFields          `json:"medical"`
	Sport              string                 `json:"sport"`
	Belt               string                 `json:"belt"`
	PhysicalTests      []PhysicalTestRow      `json:"physical_tests"`
	CompetitionRecords []CompetitionRecordRow `json:"competition_records"`
	PendingDeletes     PendingDeletes         `json:"pending_deletes"`
	AvailableMajors    []models.Major         `json:"available_majors"`
	Catalogs           models.Catalogs        `json:"catalogs"`
	LastError          string                 `json:"last_error,omitempty"`
}

// PendingDeletes lists loaded row ids queued for deletion.
type PendingDeletes struct {
	PhysicalTests      []int64 `json:"physical_tests"`
	CompetitionRecords []int64 `json:"competition_records"`
}

// View snapshots the form. Slices in the result are copies.
func (f *Form) View() View {
	tests, records := f.PendingDeletes()
	v := View{
		Mode:               f.mode,
		Phase:              f.phase,
		StudentID:          f.studentID,
		Student:            f.student,
		Medical:            f.medical,
		Sport:              f.sport,
		Belt:               f.belt,
		PhysicalTests:      make([]PhysicalTestRow, 0, len(f.tests)),
		CompetitionRecords: make([]CompetitionRecordRow, 0, len(f.records)),
		PendingDeletes:     PendingDeletes{PhysicalTests: nonNil(tests), CompetitionRecords: nonNil(records)},
		AvailableMajors:    f.AvailableMajors(),
		Catalogs:           f.catalogs,
	}
	for _, t := range f.tests {
		v.PhysicalTests = append(v.PhysicalTests, PhysicalTestRow{ID: entryID(t), PhysicalTest: t.Value()})
	}
	for _, r := range f.records {
		v.CompetitionRecords = append(v.CompetitionRecords, CompetitionRecordRow{ID: entryID(r), CompetitionRecord: r.Value()})
	}
	if f.lastErr != nil {
		v.LastError = f.lastErr.Error()
	}
	return v
}

func entryID[T comparable](entry Entry[T]) *int64 {
	switch e := entry.(type) {
	case Existing[T]:
		id := e.ID
		return &id
	case New[T]:
		return nil
	}
	return nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
