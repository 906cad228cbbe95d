// Package filters narrows the medication list shown by the browser.
package filters

import (
	"context"
	"strings"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/interfaces"
	"golang.org/x/text/cases"
)

// All disables a category or availability filter. AllLabel is the value the
// pages display for it and is accepted as well.
const (
	All      = "all"
	AllLabel = "الكل"
)

// Criteria are the three browser filters. Zero value matches everything.
type Criteria struct {
	Search       string `json:"q,omitempty"`
	Category     string `json:"category,omitempty"`
	Availability string `json:"availability,omitempty"`
}

// Row is a medication that passed the filters, with its resolved category.
type Row struct {
	Medication    entities.Medication `json:"medication"`
	CategoryLabel string              `json:"category_label"`
}

// IsAll reports whether a filter value disables its filter.
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == All || v == AllLabel
}

// Apply filters meds in a fixed order: search, then category, then
// availability. The input slice is never modified.
func Apply(ctx context.Context, meds []entities.Medication, c Criteria, labels interfaces.LabelResolver) ([]Row, error) {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(c.Search))

	out := make([]Row, 0, len(meds))
	for i := range meds {
		m := meds[i]

		if needle != "" && !matchesSearch(fold, &m, needle) {
			continue
		}

		label, err := labels.ResolveLabel(ctx, &m, entities.RelationCategory)
		if err != nil {
			return nil, err
		}
		if !IsAll(c.Category) && label != c.Category {
			continue
		}

		if !IsAll(c.Availability) && entities.Text(m.Availability) != c.Availability {
			continue
		}

		out = append(out, Row{Medication: m, CategoryLabel: label})
	}
	return out, nil
}

func matchesSearch(fold cases.Caser, m *entities.Medication, needle string) bool {
	if strings.Contains(fold.String(m.GenericName), needle) {
		return true
	}
	return m.TradeName != nil && strings.Contains(fold.String(*m.TradeName), needle)
}
