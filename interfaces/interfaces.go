// Package interfaces defines core abstractions for the medication catalog
// to improve testability and keep the presentation layer decoupled from storage.
package interfaces

import (
	"context"
	"net/http"
	"net/url"

	"github.com/giygas/medication-catalog/entities"
)

// TableDump is a raw, stringified view of one table.
type TableDump struct {
	Kind    entities.Kind
	Columns []string
	Rows    [][]string
}

// DatabaseInfo summarises the backing database file.
type DatabaseInfo struct {
	Path      string
	SizeBytes int64
	RowCounts map[entities.Kind]int
}

// ReferenceLookup fetches a single classification row by id.
// Implementations return entities.ErrNotFound when the row does not exist.
type ReferenceLookup interface {
	Lookup(ctx context.Context, relation entities.Relation, id int64) (entities.Reference, error)
}

// CatalogStore defines the contract for catalog persistence.
// It exclusively owns all persisted state.
type CatalogStore interface {
	ReferenceLookup

	// Medications
	ListMedications(ctx context.Context) ([]entities.Medication, error)
	GetMedication(ctx context.Context, id int64) (*entities.Medication, error)
	CreateMedication(ctx context.Context, m *entities.Medication) (int64, error)
	UpdateMedication(ctx context.Context, id int64, m *entities.Medication) error

	// Reference tables
	ListCategories(ctx context.Context) ([]entities.Category, error)
	ListDrugTypes(ctx context.Context) ([]entities.DrugType, error)
	ListManufacturers(ctx context.Context) ([]entities.Manufacturer, error)
	ListAgeWeightEstimates(ctx context.Context) ([]entities.AgeWeightEstimate, error)
	CreateCategory(ctx context.Context, c *entities.Category) (int64, error)
	CreateDrugType(ctx context.Context, d *entities.DrugType) (int64, error)
	CreateManufacturer(ctx context.Context, m *entities.Manufacturer) (int64, error)

	// Generic table operations
	Delete(ctx context.Context, kind entities.Kind, id int64) error
	DeleteAll(ctx context.Context, kind entities.Kind) (int64, error)
	Count(ctx context.Context, kind entities.Kind) (int, error)
	RawTable(ctx context.Context, kind entities.Kind) (*TableDump, error)
	Info(ctx context.Context) (*DatabaseInfo, error)
	Ping(ctx context.Context) error
}

// DataQualityReport lists gaps found in the catalog. ID lists hold at most
// the first ten offenders.
type DataQualityReport struct {
	DuplicateGenericNames          []string `json:"duplicate_generic_names"`
	MedicationsWithoutCategory     int      `json:"medications_without_category"`
	MedicationsWithoutAvailability int      `json:"medications_without_availability"`
	MedicationsWithoutDosing       int      `json:"medications_without_dosing"`
	WithoutCategoryIDs             []int64  `json:"without_category_ids"`
	WithoutAvailabilityIDs         []int64  `json:"without_availability_ids"`
	WithoutDosingIDs               []int64  `json:"without_dosing_ids"`
}

// DataValidator defines the contract for input validation and form parsing.
type DataValidator interface {
	ValidateSearch(input string) error
	ValidateID(input string) (int64, error)
	MedicationFromForm(form url.Values) (*entities.Medication, error)
	ReportDataQuality(meds []entities.Medication) *DataQualityReport
}

// LabelResolver produces display labels for a medication's classifications.
type LabelResolver interface {
	ResolveLabel(ctx context.Context, m *entities.Medication, relation entities.Relation) (string, error)
}

// Confirmer implements the two-click confirmation protocol for destructive actions.
type Confirmer interface {
	// Confirm arms the (action, target) pair on the first call and returns false;
	// the next call for the same pair clears it and returns true.
	Confirm(action, target string) bool
	IsArmed(action, target string) bool
	Disarm(action, target string)
}

// Scheduler defines the contract for background job scheduling.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (status string, details map[string]any, httpStatus int)
}

// HTTPHandler defines the contract for the page and API handlers.
type HTTPHandler interface {
	// Pages
	Home(w http.ResponseWriter, r *http.Request)
	ListMedications(w http.ResponseWriter, r *http.Request)
	ShowMedication(w http.ResponseWriter, r *http.Request)
	NewMedication(w http.ResponseWriter, r *http.Request)
	CreateMedication(w http.ResponseWriter, r *http.Request)
	DeleteMedication(w http.ResponseWriter, r *http.Request)
	ListReferences(kind entities.Kind) http.HandlerFunc
	CreateReference(kind entities.Kind) http.HandlerFunc
	DeleteReference(kind entities.Kind) http.HandlerFunc
	AgeWeight(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
	Database(w http.ResponseWriter, r *http.Request)
	DeleteAll(w http.ResponseWriter, r *http.Request)
	ImportPage(w http.ResponseWriter, r *http.Request)
	ImportPreview(w http.ResponseWriter, r *http.Request)
	ImportIngest(w http.ResponseWriter, r *http.Request)

	// JSON API
	APIListMedications(w http.ResponseWriter, r *http.Request)
	APIGetMedication(w http.ResponseWriter, r *http.Request)
	APIUpdateMedication(w http.ResponseWriter, r *http.Request)
	APIStatistics(w http.ResponseWriter, r *http.Request)
	APIAgeWeight(w http.ResponseWriter, r *http.Request)

	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
