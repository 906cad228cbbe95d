package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/medication-catalog/entities"
)

// optional normalizes an optional text value: blank becomes absent.
func optional(s *string) any {
	if !entities.HasText(s) {
		return nil
	}
	return strings.TrimSpace(*s)
}

// CreateCategory inserts a category. Name is required.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c *entities.Category) (int64, error) {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return 0, entities.Required("name")
	}
	return s.insert(ctx, "categories",
		`INSERT INTO categories (name, name_ar, description) VALUES (?, ?, ?)`,
		strings.TrimSpace(c.Name), optional(c.NameAr), optional(c.Description))
}

// CreateDrugType inserts a drug type. Name is required.
func (s *SQLiteStore) CreateDrugType(ctx context.Context, d *entities.DrugType) (int64, error) {
	if d == nil || strings.TrimSpace(d.Name) == "" {
		return 0, entities.Required("name")
	}
	return s.insert(ctx, "drug_types",
		`INSERT INTO drug_types (name, name_ar, description) VALUES (?, ?, ?)`,
		strings.TrimSpace(d.Name), optional(d.NameAr), optional(d.Description))
}

// CreateManufacturer inserts a manufacturer. Name is required.
func (s *SQLiteStore) CreateManufacturer(ctx context.Context, m *entities.Manufacturer) (int64, error) {
	if m == nil || strings.TrimSpace(m.Name) == "" {
		return 0, entities.Required("name")
	}
	return s.insert(ctx, "manufacturers",
		`INSERT INTO manufacturers (name, name_ar, country) VALUES (?, ?, ?)`,
		strings.TrimSpace(m.Name), optional(m.NameAr), optional(m.Country))
}

func (s *SQLiteStore) insert(ctx context.Context, table, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert into %s id: %w", table, err)
	}
	return id, nil
}

// ListCategories returns every category ordered by id.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]entities.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, name_ar, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]entities.Category, 0)
	for rows.Next() {
		var c entities.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NameAr, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListDrugTypes returns every drug type ordered by id.
func (s *SQLiteStore) ListDrugTypes(ctx context.Context) ([]entities.DrugType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, name_ar, description FROM drug_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list drug types: %w", err)
	}
	defer rows.Close()

	out := make([]entities.DrugType, 0)
	for rows.Next() {
		var d entities.DrugType
		if err := rows.Scan(&d.ID, &d.Name, &d.NameAr, &d.Description); err != nil {
			return nil, fmt.Errorf("scan drug type: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListManufacturers returns every manufacturer ordered by id.
func (s *SQLiteStore) ListManufacturers(ctx context.Context) ([]entities.Manufacturer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, name_ar, country FROM manufacturers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list manufacturers: %w", err)
	}
	defer rows.Close()

	out := make([]entities.Manufacturer, 0)
	for rows.Next() {
		var m entities.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.NameAr, &m.Country); err != nil {
			return nil, fmt.Errorf("scan manufacturer: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListAgeWeightEstimates returns the reference table ordered by age.
func (s *SQLiteStore) ListAgeWeightEstimates(ctx context.Context) ([]entities.AgeWeightEstimate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, age_group, age_months, age_text, estimated_weight_kg
		FROM age_weight_estimates
		ORDER BY age_months ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list age/weight estimates: %w", err)
	}
	defer rows.Close()

	out := make([]entities.AgeWeightEstimate, 0)
	for rows.Next() {
		var e entities.AgeWeightEstimate
		if err := rows.Scan(&e.ID, &e.AgeGroup, &e.AgeMonths, &e.AgeText, &e.EstimatedWeightKg); err != nil {
			return nil, fmt.Errorf("scan age/weight estimate: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Lookup fetches the current row a classification relation points to.
func (s *SQLiteStore) Lookup(ctx context.Context, relation entities.Relation, id int64) (entities.Reference, error) {
	kind, err := relation.Kind()
	if err != nil {
		return entities.Reference{}, err
	}

	// The table name comes from a closed enum, never from user input.
	query := fmt.Sprintf(`SELECT id, name, name_ar FROM %s WHERE id = ?`, kind.Table())

	var ref entities.Reference
	err = s.db.QueryRowContext(ctx, query, id).Scan(&ref.ID, &ref.Name, &ref.NameAr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Reference{}, fmt.Errorf("%s %d: %w", relation, id, entities.ErrNotFound)
		}
		return entities.Reference{}, fmt.Errorf("lookup %s %d: %w", relation, id, err)
	}
	return ref, nil
}
