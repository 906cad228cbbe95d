// Package entities holds the catalog data model shared by the store, the
// resolver and the presentation layer.
package entities

import "fmt"

// Kind identifies one of the persisted tables.
type Kind string

const (
	KindMedication        Kind = "medications"
	KindCategory          Kind = "categories"
	KindDrugType          Kind = "drug_types"
	KindManufacturer      Kind = "manufacturers"
	KindAgeWeightEstimate Kind = "age_weight_estimates"
)

// AllKinds lists every table in display order.
var AllKinds = []Kind{
	KindMedication,
	KindCategory,
	KindDrugType,
	KindManufacturer,
	KindAgeWeightEstimate,
}

// Table returns the SQL table name backing the kind.
func (k Kind) Table() string {
	return string(k)
}

// ParseKind maps a table name (as used in URLs) to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", ErrInvalidArgument, s)
}

// Relation names a classification a medication can point to.
type Relation string

const (
	RelationCategory     Relation = "category"
	RelationDrugType     Relation = "drug_type"
	RelationManufacturer Relation = "manufacturer"
)

// Relations lists the three classification relations.
var Relations = []Relation{RelationCategory, RelationDrugType, RelationManufacturer}

// Kind returns the reference table a relation points into.
func (r Relation) Kind() (Kind, error) {
	switch r {
	case RelationCategory:
		return KindCategory, nil
	case RelationDrugType:
		return KindDrugType, nil
	case RelationManufacturer:
		return KindManufacturer, nil
	}
	return "", fmt.Errorf("%w: unknown relation %q", ErrInvalidArgument, string(r))
}
