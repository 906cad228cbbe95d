package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/medication-catalog/entities"
)

// medicationColumns are the writable columns in schema order. The id and
// timestamps are handled separately.
var medicationColumns = entities.MedicationFields

// selectMedicationSQL is built once from medicationColumns.
var selectMedicationSQL = func() string {
	names := make([]string, 0, len(medicationColumns)+3)
	names = append(names, "id")
	for _, c := range medicationColumns {
		names = append(names, c.Name)
	}
	names = append(names, "created_at", "updated_at")
	return "SELECT " + strings.Join(names, ", ") + " FROM medications"
}()

func columnValue(ref any) any {
	return entities.FieldValue(ref)
}

func scanDest(m *entities.Medication) []any {
	dest := make([]any, 0, len(medicationColumns)+3)
	dest = append(dest, &m.ID)
	for _, c := range medicationColumns {
		dest = append(dest, c.Ref(m))
	}
	return append(dest, &m.CreatedAt, &m.UpdatedAt)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (*entities.Medication, error) {
	var m entities.Medication
	if err := row.Scan(scanDest(&m)...); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMedications returns every medication, most recently created first.
func (s *SQLiteStore) ListMedications(ctx context.Context) ([]entities.Medication, error) {
	rows, err := s.db.QueryContext(ctx, selectMedicationSQL+" ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	out := make([]entities.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetMedication returns the medication with the given id or ErrNotFound.
func (s *SQLiteStore) GetMedication(ctx context.Context, id int64) (*entities.Medication, error) {
	m, err := scanMedication(s.db.QueryRowContext(ctx, selectMedicationSQL+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("medication %d: %w", id, entities.ErrNotFound)
		}
		return nil, fmt.Errorf("get medication %d: %w", id, err)
	}
	return m, nil
}

// CreateMedication inserts exactly the supplied fields; absent fields are
// stored as NULL.
func (s *SQLiteStore) CreateMedication(ctx context.Context, m *entities.Medication) (int64, error) {
	if m == nil || strings.TrimSpace(m.GenericName) == "" {
		return 0, entities.Required("generic_name")
	}

	// Missing references are simply stored without a name.
	if _, err := s.captureRelationNames(ctx, m); err != nil {
		return 0, err
	}

	var (
		names  []string
		marks  []string
		values []any
	)
	for _, c := range medicationColumns {
		v := columnValue(c.Ref(m))
		if v == nil {
			continue
		}
		names = append(names, c.Name)
		marks = append(marks, "?")
		values = append(values, v)
	}

	query := fmt.Sprintf("INSERT INTO medications (%s) VALUES (%s)",
		strings.Join(names, ", "), strings.Join(marks, ", "))

	res, err := s.db.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, fmt.Errorf("insert medication: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert medication id: %w", err)
	}
	return id, nil
}

// UpdateMedication replaces the supplied (non-nil) fields of an existing
// medication. An empty GenericName means "not supplied".
func (s *SQLiteStore) UpdateMedication(ctx context.Context, id int64, m *entities.Medication) error {
	if m == nil {
		return fmt.Errorf("%w: nil medication", entities.ErrInvalidArgument)
	}
	if m.GenericName != "" && strings.TrimSpace(m.GenericName) == "" {
		return entities.Required("generic_name")
	}

	dangling, err := s.captureRelationNames(ctx, m)
	if err != nil {
		return err
	}

	var (
		sets   []string
		values []any
	)
	// A repointed reference must not keep the previous row's name.
	for _, rel := range dangling {
		sets = append(sets, relationNameColumn(rel)+" = NULL")
	}
	for _, c := range medicationColumns {
		v := columnValue(c.Ref(m))
		if v == nil || (c.Name == "generic_name" && v == "") {
			continue
		}
		sets = append(sets, c.Name+" = ?")
		values = append(values, v)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	values = append(values, id)

	query := "UPDATE medications SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("update medication %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update medication %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("medication %d: %w", id, entities.ErrNotFound)
	}
	return nil
}

// captureRelationNames copies the current display label of each referenced
// classification into the medication, unless the caller supplied one.
// It returns the relations whose id points at no row; those are left
// without a name.
func (s *SQLiteStore) captureRelationNames(ctx context.Context, m *entities.Medication) ([]entities.Relation, error) {
	var dangling []entities.Relation
	for _, rel := range entities.Relations {
		id, _ := m.RelationID(rel)
		name, _ := m.RelationName(rel)
		if id == nil || name != nil {
			continue
		}

		ref, err := s.Lookup(ctx, rel, *id)
		if errors.Is(err, entities.ErrNotFound) {
			dangling = append(dangling, rel)
			continue
		}
		if err != nil {
			return nil, err
		}
		m.SetRelationName(rel, entities.Ptr(ref.Label()))
	}
	return dangling, nil
}

// relationNameColumn is the denormalized name column of a relation,
// e.g. category_name.
func relationNameColumn(rel entities.Relation) string {
	return string(rel) + "_name"
}
