// Package resolver turns a medication's classification references into
// display labels. A live referenced row wins; otherwise the name captured
// when the medication was written is used; otherwise the Unspecified
// sentinel is returned.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/interfaces"
	"github.com/giygas/medication-catalog/logging"
)

// Unspecified is shown when no label can be produced for a relation.
const Unspecified = "غير محدد"

// Compile-time check to ensure Resolver implements LabelResolver
var _ interfaces.LabelResolver = (*Resolver)(nil)

// Resolver resolves labels against a ReferenceLookup. It never caches:
// every call sees the current state of the store.
type Resolver struct {
	lookup interfaces.ReferenceLookup
}

func New(lookup interfaces.ReferenceLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// ResolveLabel returns the display label of one relation of m.
//
// A dangling foreign key is not an error: the lookup's ErrNotFound is
// swallowed and resolution falls through to the captured name. An unknown
// relation yields ErrInvalidArgument. Any other storage failure is returned.
func (r *Resolver) ResolveLabel(ctx context.Context, m *entities.Medication, relation entities.Relation) (string, error) {
	id, err := m.RelationID(relation)
	if err != nil {
		return "", err
	}

	if id != nil {
		ref, err := r.lookup.Lookup(ctx, relation, *id)
		switch {
		case err == nil:
			return ref.Label(), nil
		case errors.Is(err, entities.ErrNotFound):
			logging.Debug("Dangling reference", "relation", relation, "id", *id, "medication_id", m.ID)
		default:
			return "", fmt.Errorf("resolve %s: %w", relation, err)
		}
	}

	name, _ := m.RelationName(relation)
	if entities.HasText(name) {
		return *name, nil
	}
	return Unspecified, nil
}

// Labels holds the resolved labels of all three relations.
type Labels struct {
	Category     string `json:"category"`
	DrugType     string `json:"drug_type"`
	Manufacturer string `json:"manufacturer"`
}

// ResolveAll resolves every relation of m, stopping at the first error.
func (r *Resolver) ResolveAll(ctx context.Context, m *entities.Medication) (Labels, error) {
	var (
		out Labels
		err error
	)
	if out.Category, err = r.ResolveLabel(ctx, m, entities.RelationCategory); err != nil {
		return Labels{}, err
	}
	if out.DrugType, err = r.ResolveLabel(ctx, m, entities.RelationDrugType); err != nil {
		return Labels{}, err
	}
	if out.Manufacturer, err = r.ResolveLabel(ctx, m, entities.RelationManufacturer); err != nil {
		return Labels{}, err
	}
	return out, nil
}
