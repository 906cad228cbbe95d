package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/interfaces"
)

// MockCatalogStore is an in-memory CatalogStore. Setting err makes every
// call fail with it.
type MockCatalogStore struct {
	meds          map[int64]*entities.Medication
	categories    []entities.Category
	drugTypes     []entities.DrugType
	manufacturers []entities.Manufacturer
	ageWeight     []entities.AgeWeightEstimate
	nextID        int64
	err           error
}

func NewMockCatalogStore() *MockCatalogStore {
	return &MockCatalogStore{
		meds: map[int64]*entities.Medication{},
		categories: []entities.Category{
			{ID: 1, Name: "Antibiotics", NameAr: entities.Ptr("مضادات حيوية")},
			{ID: 2, Name: "Analgesics"},
		},
		drugTypes: []entities.DrugType{
			{ID: 1, Name: "Penicillin"},
		},
		manufacturers: []entities.Manufacturer{
			{ID: 1, Name: "GSK", Country: entities.Ptr("UK")},
		},
		ageWeight: []entities.AgeWeightEstimate{
			{ID: 1, AgeGroup: entities.AgeBandInfant, AgeMonths: 0, AgeText: "حديث الولادة", EstimatedWeightKg: 3.5},
			{ID: 2, AgeGroup: entities.AgeBandInfant, AgeMonths: 6, AgeText: "6 أشهر", EstimatedWeightKg: 7.5},
			{ID: 3, AgeGroup: entities.AgeBandChild, AgeMonths: 12, AgeText: "سنة", EstimatedWeightKg: 10},
		},
		nextID: 1,
	}
}

// add stores a medication directly, bypassing validation.
func (m *MockCatalogStore) add(med entities.Medication) int64 {
	med.ID = m.nextID
	m.nextID++
	med.CreatedAt = time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	med.UpdatedAt = med.CreatedAt
	m.meds[med.ID] = &med
	return med.ID
}

func (m *MockCatalogStore) Lookup(ctx context.Context, relation entities.Relation, id int64) (entities.Reference, error) {
	if m.err != nil {
		return entities.Reference{}, m.err
	}
	switch relation {
	case entities.RelationCategory:
		for _, c := range m.categories {
			if c.ID == id {
				return c.Reference(), nil
			}
		}
	case entities.RelationDrugType:
		for _, d := range m.drugTypes {
			if d.ID == id {
				return d.Reference(), nil
			}
		}
	case entities.RelationManufacturer:
		for _, x := range m.manufacturers {
			if x.ID == id {
				return x.Reference(), nil
			}
		}
	default:
		return entities.Reference{}, entities.ErrInvalidArgument
	}
	return entities.Reference{}, fmt.Errorf("%s %d: %w", relation, id, entities.ErrNotFound)
}

func (m *MockCatalogStore) ListMedications(ctx context.Context) ([]entities.Medication, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]entities.Medication, 0, len(m.meds))
	for _, med := range m.meds {
		out = append(out, *med)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockCatalogStore) GetMedication(ctx context.Context, id int64) (*entities.Medication, error) {
	if m.err != nil {
		return nil, m.err
	}
	med, ok := m.meds[id]
	if !ok {
		return nil, fmt.Errorf("medication %d: %w", id, entities.ErrNotFound)
	}
	cp := *med
	return &cp, nil
}

func (m *MockCatalogStore) CreateMedication(ctx context.Context, med *entities.Medication) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if strings.TrimSpace(med.GenericName) == "" {
		return 0, entities.Required("generic_name")
	}
	return m.add(*med), nil
}

func (m *MockCatalogStore) UpdateMedication(ctx context.Context, id int64, patch *entities.Medication) error {
	if m.err != nil {
		return m.err
	}
	med, ok := m.meds[id]
	if !ok {
		return fmt.Errorf("medication %d: %w", id, entities.ErrNotFound)
	}
	for _, f := range entities.MedicationFields {
		switch src := f.Ref(patch).(type) {
		case *string:
			if *src != "" {
				*f.Ref(med).(*string) = *src
			}
		case **string:
			if *src != nil {
				*f.Ref(med).(**string) = *src
			}
		case **int64:
			if *src != nil {
				*f.Ref(med).(**int64) = *src
			}
		case **float64:
			if *src != nil {
				*f.Ref(med).(**float64) = *src
			}
		}
	}
	return nil
}

func (m *MockCatalogStore) ListCategories(ctx context.Context) ([]entities.Category, error) {
	return m.categories, m.err
}

func (m *MockCatalogStore) ListDrugTypes(ctx context.Context) ([]entities.DrugType, error) {
	return m.drugTypes, m.err
}

func (m *MockCatalogStore) ListManufacturers(ctx context.Context) ([]entities.Manufacturer, error) {
	return m.manufacturers, m.err
}

func (m *MockCatalogStore) ListAgeWeightEstimates(ctx context.Context) ([]entities.AgeWeightEstimate, error) {
	return m.ageWeight, m.err
}

func (m *MockCatalogStore) CreateCategory(ctx context.Context, c *entities.Category) (int64, error) {
	if strings.TrimSpace(c.Name) == "" {
		return 0, entities.Required("name")
	}
	c.ID = int64(len(m.categories) + 100)
	m.categories = append(m.categories, *c)
	return c.ID, m.err
}

func (m *MockCatalogStore) CreateDrugType(ctx context.Context, d *entities.DrugType) (int64, error) {
	if strings.TrimSpace(d.Name) == "" {
		return 0, entities.Required("name")
	}
	d.ID = int64(len(m.drugTypes) + 100)
	m.drugTypes = append(m.drugTypes, *d)
	return d.ID, m.err
}

func (m *MockCatalogStore) CreateManufacturer(ctx context.Context, x *entities.Manufacturer) (int64, error) {
	if strings.TrimSpace(x.Name) == "" {
		return 0, entities.Required("name")
	}
	x.ID = int64(len(m.manufacturers) + 100)
	m.manufacturers = append(m.manufacturers, *x)
	return x.ID, m.err
}

func (m *MockCatalogStore) Delete(ctx context.Context, kind entities.Kind, id int64) error {
	if m.err != nil {
		return m.err
	}
	notFound := fmt.Errorf("%s %d: %w", kind, id, entities.ErrNotFound)
	switch kind {
	case entities.KindMedication:
		if _, ok := m.meds[id]; !ok {
			return notFound
		}
		delete(m.meds, id)
		return nil
	case entities.KindCategory:
		for i, c := range m.categories {
			if c.ID == id {
				m.categories = append(m.categories[:i], m.categories[i+1:]...)
				return nil
			}
		}
		return notFound
	case entities.KindDrugType:
		for i, d := range m.drugTypes {
			if d.ID == id {
				m.drugTypes = append(m.drugTypes[:i], m.drugTypes[i+1:]...)
				return nil
			}
		}
		return notFound
	case entities.KindManufacturer:
		for i, x := range m.manufacturers {
			if x.ID == id {
				m.manufacturers = append(m.manufacturers[:i], m.manufacturers[i+1:]...)
				return nil
			}
		}
		return notFound
	}
	return entities.ErrInvalidArgument
}

func (m *MockCatalogStore) DeleteAll(ctx context.Context, kind entities.Kind) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	n, _ := m.Count(ctx, kind)
	switch kind {
	case entities.KindMedication:
		m.meds = map[int64]*entities.Medication{}
	case entities.KindCategory:
		m.categories = nil
	case entities.KindDrugType:
		m.drugTypes = nil
	case entities.KindManufacturer:
		m.manufacturers = nil
	case entities.KindAgeWeightEstimate:
		m.ageWeight = nil
	}
	return int64(n), nil
}

func (m *MockCatalogStore) Count(ctx context.Context, kind entities.Kind) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	switch kind {
	case entities.KindMedication:
		return len(m.meds), nil
	case entities.KindCategory:
		return len(m.categories), nil
	case entities.KindDrugType:
		return len(m.drugTypes), nil
	case entities.KindManufacturer:
		return len(m.manufacturers), nil
	case entities.KindAgeWeightEstimate:
		return len(m.ageWeight), nil
	}
	return 0, entities.ErrInvalidArgument
}

func (m *MockCatalogStore) RawTable(ctx context.Context, kind entities.Kind) (*interfaces.TableDump, error) {
	if m.err != nil {
		return nil, m.err
	}
	dump := &interfaces.TableDump{Kind: kind, Columns: []string{"id", "name"}}
	switch kind {
	case entities.KindCategory:
		for _, c := range m.categories {
			dump.Rows = append(dump.Rows, []string{fmt.Sprint(c.ID), c.Name})
		}
	case entities.KindMedication:
		for _, med := range m.meds {
			dump.Rows = append(dump.Rows, []string{fmt.Sprint(med.ID), med.GenericName})
		}
	}
	return dump, nil
}

func (m *MockCatalogStore) Info(ctx context.Context) (*interfaces.DatabaseInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	info := &interfaces.DatabaseInfo{Path: "test.db", SizeBytes: 20480, RowCounts: map[entities.Kind]int{}}
	for _, k := range entities.AllKinds {
		info.RowCounts[k], _ = m.Count(ctx, k)
	}
	return info, nil
}

func (m *MockCatalogStore) Ping(ctx context.Context) error {
	return m.err
}

// MockHealthChecker returns a fixed result.
type MockHealthChecker struct {
	status     string
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) (string, map[string]any, int) {
	return m.status, map[string]any{"database": "test.db"}, m.httpStatus
}
