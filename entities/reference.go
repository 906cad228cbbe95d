package entities

// Category groups medications by therapeutic class.
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	NameAr      *string `json:"name_ar,omitempty"`
	Description *string `json:"description,omitempty"`
}

// DrugType classifies medications by pharmacological type.
type DrugType struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	NameAr      *string `json:"name_ar,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Manufacturer is the company producing a medication.
type Manufacturer struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	NameAr  *string `json:"name_ar,omitempty"`
	Country *string `json:"country,omitempty"`
}

// Reference is the common projection of Category, DrugType and Manufacturer
// used to build display labels.
type Reference struct {
	ID     int64
	Name   string
	NameAr *string
}

func (c Category) Reference() Reference {
	return Reference{ID: c.ID, Name: c.Name, NameAr: c.NameAr}
}

func (d DrugType) Reference() Reference {
	return Reference{ID: d.ID, Name: d.Name, NameAr: d.NameAr}
}

func (m Manufacturer) Reference() Reference {
	return Reference{ID: m.ID, Name: m.Name, NameAr: m.NameAr}
}

// Label composes "name (name_ar)" when the localized name is present and
// non-empty, otherwise just "name".
func (r Reference) Label() string {
	if HasText(r.NameAr) {
		return r.Name + " (" + *r.NameAr + ")"
	}
	return r.Name
}

// AgeWeightEstimate is one row of the read-only age/weight reference table.
type AgeWeightEstimate struct {
	ID                int64   `json:"id" yaml:"-"`
	AgeGroup          string  `json:"age_group" yaml:"age_group"`
	AgeMonths         int     `json:"age_months" yaml:"age_months"`
	AgeText           string  `json:"age_text" yaml:"age_text"`
	EstimatedWeightKg float64 `json:"estimated_weight_kg" yaml:"estimated_weight_kg"`
}

// The three disjoint age bands of the age/weight table.
const (
	AgeBandInfant = "0-11 months"
	AgeBandChild  = "1-5 years"
	AgeBandSchool = "6-15 years"
)

// AgeBands lists the bands in display order.
var AgeBands = []string{AgeBandInfant, AgeBandChild, AgeBandSchool}
