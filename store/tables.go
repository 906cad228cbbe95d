package store

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/interfaces"
)

// Delete removes a single row. It never checks whether other rows reference
// it, so deleting a classification can leave medications dangling.
func (s *SQLiteStore) Delete(ctx context.Context, kind entities.Kind, id int64) error {
	if kind == entities.KindAgeWeightEstimate {
		return fmt.Errorf("%w: %s is read-only", entities.ErrInvalidArgument, kind)
	}
	if _, err := entities.ParseKind(string(kind)); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, kind.Table()), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, entities.ErrNotFound)
	}
	return nil
}

// DeleteAll removes every row of the kind and returns how many were removed.
// Callers gate this behind a two-step confirmation.
func (s *SQLiteStore) DeleteAll(ctx context.Context, kind entities.Kind) (int64, error) {
	if _, err := entities.ParseKind(string(kind)); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, kind.Table()))
	if err != nil {
		return 0, fmt.Errorf("delete all from %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all from %s: %w", kind, err)
	}
	return n, nil
}

// Count returns the number of rows of the kind.
func (s *SQLiteStore) Count(ctx context.Context, kind entities.Kind) (int, error) {
	if _, err := entities.ParseKind(string(kind)); err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, kind.Table())).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

// Info reports the database file size and the row count of every table.
func (s *SQLiteStore) Info(ctx context.Context) (*interfaces.DatabaseInfo, error) {
	info := &interfaces.DatabaseInfo{
		Path:      s.path,
		RowCounts: make(map[entities.Kind]int, len(entities.AllKinds)),
	}

	if st, err := os.Stat(s.path); err == nil {
		info.SizeBytes = st.Size()
	} else {
		return nil, fmt.Errorf("stat database file: %w", err)
	}

	for _, kind := range entities.AllKinds {
		n, err := s.Count(ctx, kind)
		if err != nil {
			return nil, err
		}
		info.RowCounts[kind] = n
	}
	return info, nil
}

// RawTable returns every row of a table as strings, NULL rendered as "".
func (s *SQLiteStore) RawTable(ctx context.Context, kind entities.Kind) (*interfaces.TableDump, error) {
	if _, err := entities.ParseKind(string(kind)); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY id`, kind.Table()))
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", kind, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dump %s columns: %w", kind, err)
	}

	dump := &interfaces.TableDump{Kind: kind, Columns: cols, Rows: make([][]string, 0)}
	for rows.Next() {
		raw := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("dump %s scan: %w", kind, err)
		}

		record := make([]string, len(cols))
		for i, v := range raw {
			record[i] = formatCell(v)
		}
		dump.Rows = append(dump.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return dump, nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}
