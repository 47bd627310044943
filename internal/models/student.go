package models

// BloodType enumerates the blood groups accepted on a medical record.
type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// BloodTypes lists blood types in display order.
var BloodTypes = []BloodType{
	BloodTypeAPos, BloodTypeANeg, BloodTypeBPos, BloodTypeBNeg,
	BloodTypeABPos, BloodTypeABNeg, BloodTypeOPos, BloodTypeONeg,
}

// TestCategory classifies a physical test.
type TestCategory string

const (
	TestCategorySpeed     TestCategory = "velocidad"
	TestCategoryStrength  TestCategory = "fuerza"
	TestCategoryEndurance TestCategory = "resistencia"
)

// TestCategories lists categories in display order; the first one is the form default.
var TestCategories = []TestCategory{TestCategorySpeed, TestCategoryStrength, TestCategoryEndurance}

// CompetitionResult is the medal (or lack of one) earned in a competition.
type CompetitionResult string

const (
	CompetitionResultGold   CompetitionResult = "ORO"
	CompetitionResultSilver CompetitionResult = "PLATA"
	CompetitionResultBronze CompetitionResult = "BRONCE"
	CompetitionResultOther  CompetitionResult = "OTRO"
)

// CompetitionResults lists results in display order.
var CompetitionResults = []CompetitionResult{
	CompetitionResultGold, CompetitionResultSilver, CompetitionResultBronze, CompetitionResultOther,
}

// Student holds the personal data of a registered athlete.
// NationalID is the natural key; ID is the surrogate used for update and delete calls.
type Student struct {
	ID          string `json:"id"`
	NationalID  string `json:"national_id"`
	FullName    string `json:"full_name"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	BirthDate   string `json:"birth_date"`
	MajorID     int64  `json:"major_id,omitempty"`
	MajorName   string `json:"major_name,omitempty"`
	FacultyID   int64  `json:"faculty_id,omitempty"`
	FacultyName string `json:"faculty_name,omitempty"`
}

// MedicalRecord is the optional health sheet attached to a student.
type MedicalRecord struct {
	BloodType   BloodType `json:"blood_type,omitempty"`
	Pathologies string    `json:"pathologies,omitempty"`
	LastCheckup string    `json:"last_checkup,omitempty"`
}

// SportEnrollment links a student to a sport with an optional belt colour.
type SportEnrollment struct {
	Sport string `json:"sport"`
	Belt  string `json:"belt,omitempty"`
}

// PhysicalTest is one measured performance test. ID is zero until persisted.
type PhysicalTest struct {
	ID         int64        `json:"id,omitempty"`
	Category   TestCategory `json:"category"`
	Name       string       `json:"name"`
	Unit       string       `json:"unit"`
	Result     string       `json:"result"`
	RecordedAt string       `json:"recorded_at,omitempty"`
}

// CompetitionRecord is one competition participation. ID is zero until persisted.
type CompetitionRecord struct {
	ID        int64             `json:"id,omitempty"`
	Name      string            `json:"name"`
	Date      string            `json:"date"`
	Result    CompetitionResult `json:"result,omitempty"`
	Placement Placement         `json:"placement"`
}

// Aggregate is a student together with every related child record.
type Aggregate struct {
	Student            Student             `json:"student"`
	Sports             []SportEnrollment   `json:"sports"`
	Medical            *MedicalRecord      `json:"medical,omitempty"`
	PhysicalTests      []PhysicalTest      `json:"physical_tests"`
	CompetitionRecords []CompetitionRecord `json:"competition_records"`
}
