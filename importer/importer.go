// Package importer reads uploaded spreadsheets for the import page. It only
// previews them: mapping spreadsheet columns onto catalog fields is not
// implemented.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/giygas/medication-catalog/logging"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrUnsupportedFormat is returned for files that are not .xlsx, .csv or .tsv.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when the file has no header row.
	ErrEmptyFile = errors.New("file is empty")

	// ErrNotImplemented is returned by Ingest.
	ErrNotImplemented = errors.New("import is not implemented yet")
)

// SupportedExtensions lists the accepted upload extensions.
var SupportedExtensions = []string{".xlsx", ".csv", ".tsv"}

// Preview is the header row plus the first rows of an uploaded sheet.
type Preview struct {
	Filename  string     `json:"filename"`
	Sheet     string     `json:"sheet,omitempty"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// Importer builds previews limited to a fixed number of rows.
type Importer struct {
	previewRows int
}

func New(previewRows int) *Importer {
	if previewRows <= 0 {
		previewRows = 10
	}
	return &Importer{previewRows: previewRows}
}

// Preview reads the whole upload and returns its header and first rows.
// The format is chosen from the filename extension.
func (im *Importer) Preview(filename string, r io.Reader) (*Preview, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		sheet   string
		records [][]string
		err     error
	)
	switch ext {
	case ".xlsx":
		sheet, records, err = readWorkbook(r)
	case ".csv":
		records, err = readDelimited(r, ',')
	case ".tsv":
		records, err = readDelimited(r, '\t')
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	records = dropBlankRows(records)
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	p := &Preview{
		Filename:  filename,
		Sheet:     sheet,
		Columns:   trimAll(records[0]),
		TotalRows: len(records) - 1,
	}

	body := records[1:]
	if len(body) > im.previewRows {
		body = body[:im.previewRows]
	}
	// Rows wider than the header get unnamed columns instead of losing cells.
	width := len(p.Columns)
	for _, rec := range body {
		width = max(width, len(rec))
	}
	p.Columns = pad(p.Columns, width)
	p.Rows = make([][]string, 0, len(body))
	for _, rec := range body {
		p.Rows = append(p.Rows, pad(rec, width))
	}

	logging.Info("Spreadsheet previewed", "file", filename, "columns", len(p.Columns), "rows", p.TotalRows)
	return p, nil
}

// Ingest would write previewed rows into the catalog.
func (im *Importer) Ingest(*Preview) error {
	return ErrNotImplemented
}

// readWorkbook returns the rows of the first sheet.
func readWorkbook(r io.Reader) (string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close workbook", "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return sheets[0], rows, nil
}

// readDelimited parses CSV/TSV. Files that are not valid UTF-8 are decoded as
// Windows-1256, the usual legacy encoding for Arabic spreadsheets.
func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	var src io.Reader
	if utf8.Valid(raw) {
		src = bytes.NewReader(raw)
	} else {
		src = charmap.Windows1256.NewDecoder().Reader(bytes.NewReader(raw))
	}

	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited file: %w", err)
	}
	return records, nil
}

func dropBlankRows(records [][]string) [][]string {
	out := records[:0:0]
	for _, rec := range records {
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, v := range rec {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// pad widens rec to width with empty cells.
func pad(rec []string, width int) []string {
	if len(rec) >= width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}
