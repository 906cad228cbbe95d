package entities

import "time"

// Medication is the central catalog record. GenericName is the only required
// attribute; every pointer field is nil when the value is absent.
type Medication struct {
	ID          int64   `json:"id"`
	GenericName string  `json:"generic_name"`
	TradeName   *string `json:"trade_name,omitempty"`

	// Classification. The *_name fields are display names copied from the
	// referenced row when the medication was written.
	CategoryID       *int64  `json:"category_id,omitempty"`
	CategoryName     *string `json:"category_name,omitempty"`
	DrugTypeID       *int64  `json:"drug_type_id,omitempty"`
	DrugTypeName     *string `json:"drug_type_name,omitempty"`
	ManufacturerID   *int64  `json:"manufacturer_id,omitempty"`
	ManufacturerName *string `json:"manufacturer_name,omitempty"`

	Concentration *string `json:"concentration,omitempty"`
	Form          *string `json:"form,omitempty"`
	Route         *string `json:"route,omitempty"`
	Barcode       *string `json:"barcode,omitempty"`

	// Commercial
	Price                *float64 `json:"price,omitempty"`
	PriceWithTax         *float64 `json:"price_with_tax,omitempty"`
	Availability         *string  `json:"availability,omitempty"`
	PackageInfo          *string  `json:"package_info,omitempty"`
	ManufacturingCountry *string  `json:"manufacturing_country,omitempty"`
	WarehouseName        *string  `json:"warehouse_name,omitempty"`
	SupplierName         *string  `json:"supplier_name,omitempty"`

	// Age and weight limits
	MinAgeMonths    *int64   `json:"min_age_months,omitempty"`
	MaxAgeMonths    *int64   `json:"max_age_months,omitempty"`
	MinWeightKg     *float64 `json:"min_weight_kg,omitempty"`
	MaxWeightKg     *float64 `json:"max_weight_kg,omitempty"`
	AgeLimitText    *string  `json:"age_limit_text,omitempty"`
	WeightLimitText *string  `json:"weight_limit_text,omitempty"`

	// Dosing
	DosePerKg         *float64 `json:"dose_per_kg,omitempty"`
	DoseCalculation   *string  `json:"dose_calculation,omitempty"`
	MaxSingleDose     *string  `json:"max_single_dose,omitempty"`
	MaxDailyDose      *string  `json:"max_daily_dose,omitempty"`
	Frequency         *string  `json:"frequency,omitempty"`
	TreatmentDuration *string  `json:"treatment_duration,omitempty"`

	// Medical and safety
	Indications       *string `json:"indications,omitempty"`
	Contraindications *string `json:"contraindications,omitempty"`
	SideEffects       *string `json:"side_effects,omitempty"`
	DrugInteractions  *string `json:"drug_interactions,omitempty"`
	Warnings          *string `json:"warnings,omitempty"`
	OverdoseInfo      *string `json:"overdose_info,omitempty"`

	// Pregnancy and lactation
	PregnancyCategory *string `json:"pregnancy_category,omitempty"`
	PregnancySafety   *string `json:"pregnancy_safety,omitempty"`
	LactationSafety   *string `json:"lactation_safety,omitempty"`

	// Storage
	StorageConditions *string `json:"storage_conditions,omitempty"`
	ShelfLife         *string `json:"shelf_life,omitempty"`

	// Provenance
	Source          *string `json:"source,omitempty"`
	SourceReference *string `json:"source_reference,omitempty"`
	LastVerified    *string `json:"last_verified,omitempty"`

	// Media
	ImagePath   *string `json:"image_path,omitempty"`
	LeafletPath *string `json:"leaflet_path,omitempty"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RelationID returns the foreign key stored for the relation.
func (m *Medication) RelationID(r Relation) (*int64, error) {
	switch r {
	case RelationCategory:
		return m.CategoryID, nil
	case RelationDrugType:
		return m.DrugTypeID, nil
	case RelationManufacturer:
		return m.ManufacturerID, nil
	}
	_, err := r.Kind()
	return nil, err
}

// RelationName returns the denormalized display name stored for the relation.
func (m *Medication) RelationName(r Relation) (*string, error) {
	switch r {
	case RelationCategory:
		return m.CategoryName, nil
	case RelationDrugType:
		return m.DrugTypeName, nil
	case RelationManufacturer:
		return m.ManufacturerName, nil
	}
	_, err := r.Kind()
	return nil, err
}

// SetRelationName stores a denormalized display name for the relation.
func (m *Medication) SetRelationName(r Relation, name *string) {
	switch r {
	case RelationCategory:
		m.CategoryName = name
	case RelationDrugType:
		m.DrugTypeName = name
	case RelationManufacturer:
		m.ManufacturerName = name
	}
}

// Forms lists the pharmaceutical forms offered by the creation form.
var Forms = []string{
	"oral drops",
	"suspension",
	"suppository",
	"tablet",
	"capsule",
	"syrup",
	"injection",
}

// Availability values offered by the creation form and the browser filter.
const (
	AvailabilityAvailable   = "متوفر"
	AvailabilityUnavailable = "غير متوفر"
	AvailabilityRare        = "نادر"
)

// AvailabilityOptions lists the availability values in display order.
var AvailabilityOptions = []string{
	AvailabilityAvailable,
	AvailabilityUnavailable,
	AvailabilityRare,
}
