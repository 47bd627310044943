package models

// StudentListItem is one row of the denormalized student list.
type StudentListItem struct {
	ID         string   `json:"id"`
	NationalID string   `json:"national_id"`
	FullName   string   `json:"full_name"`
	Age        *int     `json:"age"`
	Major      string   `json:"major,omitempty"`
	Sports     []string `json:"sports"`
	Belts      []string `json:"belts"`
}

// ListFilter holds the three independent list predicates. Empty values match everything.
type ListFilter struct {
	Search string `json:"search"`
	Sport  string `json:"sport"`
	Belt   string `json:"belt"`
}
