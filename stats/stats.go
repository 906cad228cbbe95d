// Package stats computes the catalog distributions shown on the statistics
// page and lays them out as SVG charts.
package stats

import (
	"sort"
	"strings"

	"github.com/giygas/medication-catalog/entities"
)

// ManufacturerLimit caps the manufacturer distribution.
const ManufacturerLimit = 10

// Bucket is one bar of a distribution.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary holds the four distributions of the statistics page.
type Summary struct {
	Total          int      `json:"total"`
	ByCategory     []Bucket `json:"by_category"`
	ByForm         []Bucket `json:"by_form"`
	ByManufacturer []Bucket `json:"by_manufacturer"`
	ByAvailability []Bucket `json:"by_availability"`
}

// Summarize groups meds by the names stored on each record. Absent values
// are not counted.
func Summarize(meds []entities.Medication) Summary {
	return Summary{
		Total:          len(meds),
		ByCategory:     CountBy(meds, func(m *entities.Medication) *string { return m.CategoryName }),
		ByForm:         CountBy(meds, func(m *entities.Medication) *string { return m.Form }),
		ByManufacturer: Top(CountBy(meds, func(m *entities.Medication) *string { return m.ManufacturerName }), ManufacturerLimit),
		ByAvailability: CountBy(meds, func(m *entities.Medication) *string { return m.Availability }),
	}
}

// CountBy counts meds per key value, largest first, ties by label.
func CountBy(meds []entities.Medication, key func(*entities.Medication) *string) []Bucket {
	counts := make(map[string]int)
	for i := range meds {
		v := key(&meds[i])
		if !entities.HasText(v) {
			continue
		}
		counts[strings.TrimSpace(*v)]++
	}

	out := make([]Bucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, Bucket{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Top returns at most n buckets.
func Top(b []Bucket, n int) []Bucket {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// Band returns the estimates belonging to one age band, in input order.
func Band(est []entities.AgeWeightEstimate, band string) []entities.AgeWeightEstimate {
	out := make([]entities.AgeWeightEstimate, 0)
	for _, e := range est {
		if e.AgeGroup == band {
			out = append(out, e)
		}
	}
	return out
}
