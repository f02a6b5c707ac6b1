package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/KaramelBytes/healthaudit/internal/utils"
)

// CSVOptions controls how delimited patient files are read.
type CSVOptions struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, strip common separators (',' '.' space) other than the decimal one
	// MissingMarkers are field values read as "no value". Comparison is exact after trimming.
	MissingMarkers []string
}

// DefaultMissingMarkers is the canonical set of "no value" spellings.
var DefaultMissingMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

// DefaultCSVOptions returns reasonable defaults for patient exports.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		DecimalSeparator: '.',
		MissingMarkers:   DefaultMissingMarkers,
	}
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string, opt CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, opt)
}

// ReadCSV reads a header row followed by data rows. Each field becomes a
// missing, numeric or text cell. Short rows are padded with missing cells.
func ReadCSV(src io.Reader, opt CSVOptions) (*Table, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}
	cp := newCellParser(opt)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = cleanHeader(header)
	ncol := len(header)

	var rows [][]Cell
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(rec) > ncol {
			return nil, &ShapeError{Row: line, Got: len(rec), Expect: ncol}
		}
		rows = append(rows, cp.row(rec, ncol))
	}
	return New(header, rows...)
}

// WriteCSV writes the header and every row. Missing cells are empty fields.
// Numbers use shortest round-trip formatting with opt.DecimalSeparator, so
// ReadCSV with the same options reads back the same values.
func WriteCSV(w io.Writer, t *Table, opt CSVOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, t.Width())
	for i := 0; i < t.Len(); i++ {
		for j, c := range t.rows[i] {
			rec[j] = formatCell(c, opt.DecimalSeparator)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to path atomically.
func WriteCSVFile(path string, t *Table, opt CSVOptions) error {
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t, opt); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// formatCell renders c for a file whose decimal separator is dec (0 means '.').
// 'f' formatting never emits a thousands separator.
func formatCell(c Cell, dec rune) string {
	s := c.String()
	if c.Kind() == KindNumber && dec != 0 && dec != '.' {
		s = strings.Replace(s, ".", string(dec), 1)
	}
	return s
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// cellParser turns raw fields into cells using the configured missing markers and locale.
type cellParser struct {
	opt     CSVOptions
	missing map[string]struct{}
}

func newCellParser(opt CSVOptions) cellParser {
	markers := opt.MissingMarkers
	if markers == nil {
		markers = DefaultMissingMarkers
	}
	missing := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		missing[strings.TrimSpace(m)] = struct{}{}
	}
	return cellParser{opt: opt, missing: missing}
}

func (p cellParser) cell(raw string) Cell {
	v := strings.TrimSpace(raw)
	if _, ok := p.missing[v]; ok {
		return Null()
	}
	if x, ok := parseNumeric(v, p.opt); ok {
		return Num(x)
	}
	return Text(v)
}

// row converts fields to ncol cells, padding short rows with missing cells.
func (p cellParser) row(fields []string, ncol int) []Cell {
	row := make([]Cell, ncol)
	for j, raw := range fields {
		row[j] = p.cell(raw)
	}
	return row
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	}
	return out
}

func parseNumeric(s string, opt CSVOptions) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
