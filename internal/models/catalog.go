package models

// Faculty is an academic faculty from the reference catalog.
type Faculty struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"nombre" json:"name"`
}

// Major is a degree programme belonging to one faculty.
type Major struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"nombre" json:"name"`
	FacultyID   int64  `db:"facultad_id" json:"faculty_id"`
	FacultyName string `db:"facultad_nombre" json:"faculty_name"`
}

// Catalogs groups every lookup list a form or list page needs. Each list is loaded
// independently; Errors records the sources that failed, keyed by catalog name.
type Catalogs struct {
	Sports    []string          `json:"sports"`
	Belts     []string          `json:"belts"`
	Faculties []Faculty         `json:"faculties"`
	Majors    []Major           `json:"majors"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Catalog names used as cache keys and error keys.
const (
	CatalogSports    = "sports"
	CatalogBelts     = "belts"
	CatalogFaculties = "faculties"
	CatalogMajors    = "majors"
)

// MajorsForFaculty returns the majors offered by the given faculty. A zero faculty offers none.
func MajorsForFaculty(majors []Major, facultyID int64) []Major {
	result := make([]Major, 0)
	if facultyID == 0 {
		return result
	}
	for _, m := range majors {
		if m.FacultyID == facultyID {
			result = append(result, m)
		}
	}
	return result
}

// FindMajor looks a major up by id.
func FindMajor(majors []Major, id int64) (Major, bool) {
	for _, m := range majors {
		if m.ID == id {
			return m, true
		}
	}
	return Major{}, false
}
