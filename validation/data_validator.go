// Package validation checks user input and turns submitted forms into
// catalog records.
package validation

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/interfaces"
)

var (
	// Letters of any script, digits, spaces and the punctuation found in drug names.
	searchRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\s\-\.\+'/%(),]+$`)

	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "eval(", "expression(",
		"union select", "drop table", "--", "/*", "*/",
		"`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
	}
)

const (
	maxSearchLength = 100
	maxSearchWords  = 6
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateSearch checks a browser search term. Empty means "no filter" and
// is accepted.
func (v *DataValidatorImpl) ValidateSearch(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	if !utf8.ValidString(trimmed) {
		return fmt.Errorf("input is not valid UTF-8")
	}

	if utf8.RuneCountInString(trimmed) > maxSearchLength {
		return fmt.Errorf("input too long: maximum %d characters", maxSearchLength)
	}

	if len(strings.Fields(trimmed)) > maxSearchWords {
		return fmt.Errorf("search query too complex: maximum %d words allowed", maxSearchWords)
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !searchRegex.MatchString(trimmed) {
		return fmt.Errorf("input contains invalid characters")
	}

	if hasExcessiveRepetition(trimmed) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateID parses a positive record id from a URL segment or form value.
func (v *DataValidatorImpl) ValidateID(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return -1, fmt.Errorf("id cannot be empty")
	}
	if len(input) != len(trimmed) {
		return -1, fmt.Errorf("id contains invalid characters. Only numeric characters are allowed")
	}

	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return -1, fmt.Errorf("id contains invalid characters. Only numeric characters are allowed")
	}
	if id <= 0 {
		return -1, fmt.Errorf("id must be positive")
	}
	return id, nil
}

// MedicationFromForm builds a medication from a submitted creation form.
// Blank text and zero numbers become absent. Unparseable numbers are
// reported as ValidationErrors on their field.
func (v *DataValidatorImpl) MedicationFromForm(form url.Values) (*entities.Medication, error) {
	m := &entities.Medication{}

	for _, f := range entities.MedicationFields {
		raw := form.Get(f.Name)

		switch p := f.Ref(m).(type) {
		case *string:
			*p = strings.TrimSpace(raw)
		case **string:
			*p = OptionalText(raw)
		case **int64:
			n, err := OptionalInt(raw)
			if err != nil {
				return nil, &entities.ValidationError{Field: f.Name, Message: err.Error()}
			}
			*p = n
		case **float64:
			n, err := OptionalFloat(raw)
			if err != nil {
				return nil, &entities.ValidationError{Field: f.Name, Message: err.Error()}
			}
			*p = n
		}
	}

	if m.GenericName == "" {
		return nil, entities.Required("generic_name")
	}
	return m, nil
}

// ReportDataQuality summarises gaps in the catalog.
func (v *DataValidatorImpl) ReportDataQuality(meds []entities.Medication) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateGenericNames:          []string{},
		WithoutCategoryIDs:             []int64{},
		WithoutAvailabilityIDs:         []int64{},
		WithoutDosingIDs:               []int64{},
		MedicationsWithoutCategory:     0,
		MedicationsWithoutDosing:       0,
		MedicationsWithoutAvailability: 0,
	}

	seen := make(map[string]int)
	for _, m := range meds {
		key := strings.ToLower(strings.TrimSpace(m.GenericName))
		seen[key]++
		if seen[key] == 2 {
			report.DuplicateGenericNames = append(report.DuplicateGenericNames, m.GenericName)
		}
	}

	for _, m := range meds {
		if m.CategoryID == nil && !entities.HasText(m.CategoryName) {
			report.MedicationsWithoutCategory++
			if len(report.WithoutCategoryIDs) < 10 {
				report.WithoutCategoryIDs = append(report.WithoutCategoryIDs, m.ID)
			}
		}

		if !entities.HasText(m.Availability) {
			report.MedicationsWithoutAvailability++
			if len(report.WithoutAvailabilityIDs) < 10 {
				report.WithoutAvailabilityIDs = append(report.WithoutAvailabilityIDs, m.ID)
			}
		}

		if m.DosePerKg == nil && !entities.HasText(m.DoseCalculation) {
			report.MedicationsWithoutDosing++
			if len(report.WithoutDosingIDs) < 10 {
				report.WithoutDosingIDs = append(report.WithoutDosingIDs, m.ID)
			}
		}
	}

	return report
}

// OptionalText returns nil for blank input, the trimmed value otherwise.
func OptionalText(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// OptionalFloat returns nil for blank or zero input. Negative, NaN and
// infinite values are rejected.
func OptionalFloat(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not a finite number: %q", s)
	}
	if f < 0 {
		return nil, fmt.Errorf("must not be negative: %q", s)
	}
	if f == 0 {
		return nil, nil
	}
	return &f, nil
}

// OptionalInt returns nil for blank or zero input. Negative values are
// rejected.
func OptionalInt(raw string) (*int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("not a whole number: %q", s)
	}
	if n < 0 {
		return nil, fmt.Errorf("must not be negative: %q", s)
	}
	if n == 0 {
		return nil, nil
	}
	return &n, nil
}

// hasExcessiveRepetition reports the same rune repeated more than 10 times in a row.
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for _, r := range input {
		if r == prev {
			run++
			if run > 10 {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}
